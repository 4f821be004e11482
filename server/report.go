package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/johnstarich/tally/category"
	"github.com/johnstarich/tally/daily"
	"github.com/johnstarich/tally/ledger"
	"github.com/johnstarich/tally/pipeline"
	"github.com/johnstarich/tally/search"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var errNoReport = errors.New("No report available yet, sync has not completed")

type rejectionResponse struct {
	Page   int
	Index  int
	Record ledger.Record
	Error  string
}

type reportResponse struct {
	RunID         string
	Pages         int
	Balance       decimal.Decimal
	Vendors       []string
	Duplicates    []ledger.Transaction
	Categories    []category.Aggregate
	DailyBalances []daily.Balance
	Rejected      []rejectionResponse
}

func newReportResponse(result pipeline.Result) reportResponse {
	rejected := make([]rejectionResponse, 0, len(result.Rejected))
	for _, rejection := range result.Rejected {
		rejected = append(rejected, rejectionResponse{
			Page:   rejection.Page,
			Index:  rejection.Index,
			Record: rejection.Record,
			Error:  rejection.Err.Error(),
		})
	}
	return reportResponse{
		RunID:         result.RunID,
		Pages:         result.Pages,
		Balance:       result.Balance,
		Vendors:       result.Vendors(),
		Duplicates:    result.Duplicates,
		Categories:    result.Categories,
		DailyBalances: result.DailyBalances,
		Rejected:      rejected,
	}
}

func getReport(s *syncer) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, found := s.Result()
		if !found {
			abortWithClientError(c, http.StatusNotFound, errNoReport)
			return
		}
		c.JSON(http.StatusOK, newReportResponse(result))
	}
}

func getVendors(s *syncer) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, found := s.Result()
		if !found {
			abortWithClientError(c, http.StatusNotFound, errNoReport)
			return
		}
		c.JSON(http.StatusOK, map[string]interface{}{
			"Vendors": search.Query(result.Vendors(), c.Query("search")),
		})
	}
}
