package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dafibh/finbot/finbot-backend/internal/domain"
	"github.com/dafibh/finbot/finbot-backend/internal/repository/storage"
	"github.com/dafibh/finbot/finbot-backend/internal/util"
	"github.com/dafibh/finbot/finbot-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	StatementContentType = "text/csv; charset=utf-8"
	StatementURLExpiry   = 15 * time.Minute
)

// Statement describes an exported monthly statement
type Statement struct {
	Key       string                  `json:"key"`
	URL       string                  `json:"url,omitempty"`
	Month     string                  `json:"month"`
	Rows      int                     `json:"rows"`
	Aggregate domain.MonthlyAggregate `json:"aggregate"`
}

// ReportService exports monthly statements to object storage
type ReportService struct {
	analysis  *AnalysisService
	storage   storage.StatementRepository
	publisher websocket.EventPublisher
}

// NewReportService creates a new ReportService. A nil storage disables export.
func NewReportService(analysis *AnalysisService, statementStorage storage.StatementRepository, publisher websocket.EventPublisher) *ReportService {
	if publisher == nil {
		publisher = &websocket.NoOpPublisher{}
	}
	return &ReportService{
		analysis:  analysis,
		storage:   statementStorage,
		publisher: publisher,
	}
}

// IsEnabled indicates whether statement export is configured
func (s *ReportService) IsEnabled() bool {
	return s != nil && s.storage != nil
}

// Export writes asOf's monthly statement for userID and uploads it
func (s *ReportService) Export(ctx context.Context, userID string, asOf time.Time) (*Statement, error) {
	if !s.IsEnabled() {
		return nil, domain.ErrExportDisabled
	}
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrUserRequired
	}

	transactions := s.analysis.MonthTransactions(userID, asOf)
	agg := aggregate(transactions, asOf.Month())

	data, err := BuildStatementCSV(transactions, agg)
	if err != nil {
		return nil, err
	}

	month := util.MonthKey(asOf)
	key := fmt.Sprintf("statements/%s/%s/%s.csv", url.PathEscape(userID), month, uuid.New().String())

	if _, err := s.storage.Upload(ctx, key, bytes.NewReader(data), StatementContentType, int64(len(data))); err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("key", key).Msg("Failed to upload statement")
		return nil, err
	}

	statement := &Statement{
		Key:       key,
		Month:     month,
		Rows:      len(transactions),
		Aggregate: agg,
	}

	// The object is already stored, a missing link is not fatal
	if link, err := s.storage.GeneratePresignedURL(ctx, key, StatementURLExpiry); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to presign statement URL")
	} else {
		statement.URL = link
	}

	log.Info().Str("user_id", userID).Str("key", key).Int("rows", statement.Rows).Msg("Statement exported")
	s.publisher.Publish(userID, websocket.StatementExported(statement))

	return statement, nil
}

// BuildStatementCSV renders transactions as CSV followed by a totals trailer
func BuildStatementCSV(transactions []*domain.Transaction, agg domain.MonthlyAggregate) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	rows := [][]string{{"timestamp", "kind", "category", "amount", "description"}}
	for _, t := range transactions {
		rows = append(rows, []string{
			t.Timestamp.UTC().Format(time.RFC3339),
			string(t.Kind),
			csvSafe(t.Category),
			t.Amount.StringFixed(2),
			csvSafe(t.Description),
		})
	}
	rows = append(rows,
		[]string{},
		[]string{"total_income", "", "", agg.TotalIncome.StringFixed(2), ""},
		[]string{"total_expenses", "", "", agg.TotalExpenses.StringFixed(2), ""},
		[]string{"free_cash", "", "", agg.FreeCash.StringFixed(2), ""},
	)

	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("failed to write statement: %w", err)
	}
	return buf.Bytes(), nil
}

// csvSafe neutralizes cells a spreadsheet would evaluate as a formula
func csvSafe(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return s
	}
	switch trimmed[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}
