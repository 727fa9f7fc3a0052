package report

import (
	"fmt"

	"github.com/baechuer/report-service/internal/domain"
)

func cacheKeyReport(id domain.ReportID) string {
	return fmt.Sprintf("report:%s", id)
}
