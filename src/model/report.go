// src/model/report.go
package model

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/username/creditreport/src/models"
)

// ErrReportNotFound is returned when no report has the requested id.
var ErrReportNotFound = errors.New("report not found")

// reportSequence names the counter row that numbers default display labels.
const reportSequence = "reports"

// uploadedAtLayout is fixed width so the TEXT column sorts chronologically.
const uploadedAtLayout = "2006-01-02 15:04:05.000000000"

// DefaultDisplayName is the label a report gets when it is stored.
func DefaultDisplayName(seq int64) string {
	return fmt.Sprintf("Report %d", seq)
}

// ReportStore persists parsed reports in SQLite.
type ReportStore struct {
	db *sql.DB
}

func NewReportStore(db *sql.DB) *ReportStore {
	return &ReportStore{db: db}
}

// Create stores r with its upload metadata and assigns it an id and a default
// display name. The display number comes from a counter row bumped inside the same
// transaction, so concurrent uploads never share a label.
func (s *ReportStore) Create(ctx context.Context, fileName string, uploadedAt time.Time, r *models.ParsedReport) (*models.StoredReport, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("error beginning database transaction: %w", err)
	}
	defer tx.Rollback()

	var seq int64
	err = tx.QueryRowContext(ctx,
		`UPDATE report_sequence SET value = value + 1 WHERE name = ? RETURNING value`, reportSequence).Scan(&seq)
	if err != nil {
		return nil, fmt.Errorf("error advancing report sequence: %w", err)
	}

	stored := &models.StoredReport{
		ID:           uuid.NewString(),
		FileName:     fileName,
		DisplayName:  DefaultDisplayName(seq),
		UploadedAt:   uploadedAt.UTC(),
		ParsedReport: *r,
	}
	stored.Accounts = make([]models.Account, len(r.Accounts))
	copy(stored.Accounts, r.Accounts)

	bd, sum := stored.BasicDetails, stored.ReportSummary
	_, err = tx.ExecContext(ctx, `INSERT INTO reports
		(id, seq, file_name, display_name, uploaded_at,
		applicant_name, mobile_phone, pan, credit_score,
		total_accounts, active_accounts, closed_accounts,
		current_balance, secured_balance, unsecured_balance, enquiries_last_7_days)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		stored.ID, seq, stored.FileName, stored.DisplayName, stored.UploadedAt.Format(uploadedAtLayout),
		bd.Name, toNullString(bd.MobilePhone), toNullString(bd.PAN), bd.CreditScore,
		sum.TotalAccounts, sum.ActiveAccounts, sum.ClosedAccounts,
		sum.CurrentBalance, sum.SecuredBalance, sum.UnsecuredBalance, sum.EnquiriesLast7Days)
	if err != nil {
		return nil, fmt.Errorf("error inserting report: %w", err)
	}

	if len(stored.Accounts) > 0 {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO report_accounts
			(report_id, position, bank_name, account_number, account_type, current_balance, amount_overdue, address)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return nil, fmt.Errorf("error preparing account insert statement: %w", err)
		}
		defer stmt.Close()

		for i, acc := range stored.Accounts {
			if _, err := stmt.ExecContext(ctx, stored.ID, i, acc.BankName, toNullString(acc.AccountNumber), toNullString(acc.AccountType),
				acc.CurrentBalance, acc.AmountOverdue, acc.Address); err != nil {
				return nil, fmt.Errorf("error inserting account %d: %w", i, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing report: %w", err)
	}
	return stored, nil
}

// List returns every stored report, newest first.
func (s *ReportStore) List(ctx context.Context) ([]models.ReportListItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, file_name, display_name, uploaded_at FROM reports ORDER BY uploaded_at DESC, seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("error querying reports: %w", err)
	}
	defer rows.Close()

	items := []models.ReportListItem{}
	for rows.Next() {
		var item models.ReportListItem
		var uploadedAt string
		if err := rows.Scan(&item.ID, &item.FileName, &item.DisplayName, &uploadedAt); err != nil {
			return nil, fmt.Errorf("error scanning report row: %w", err)
		}
		if item.UploadedAt, err = parseUploadedAt(uploadedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reports: %w", err)
	}
	return items, nil
}

// Get returns the full report with the given id.
func (s *ReportStore) Get(ctx context.Context, id string) (*models.StoredReport, error) {
	var (
		r          models.StoredReport
		uploadedAt string
		mobile     sql.NullString
		pan        sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `SELECT id, file_name, display_name, uploaded_at,
		applicant_name, mobile_phone, pan, credit_score,
		total_accounts, active_accounts, closed_accounts,
		current_balance, secured_balance, unsecured_balance, enquiries_last_7_days
		FROM reports WHERE id = ?`, id).Scan(
		&r.ID, &r.FileName, &r.DisplayName, &uploadedAt,
		&r.BasicDetails.Name, &mobile, &pan, &r.BasicDetails.CreditScore,
		&r.ReportSummary.TotalAccounts, &r.ReportSummary.ActiveAccounts, &r.ReportSummary.ClosedAccounts,
		&r.ReportSummary.CurrentBalance, &r.ReportSummary.SecuredBalance, &r.ReportSummary.UnsecuredBalance,
		&r.ReportSummary.EnquiriesLast7Days)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching report %s: %w", id, err)
	}
	if r.UploadedAt, err = parseUploadedAt(uploadedAt); err != nil {
		return nil, err
	}
	r.BasicDetails.MobilePhone = nullableString(mobile)
	r.BasicDetails.PAN = nullableString(pan)

	if r.Accounts, err = s.accounts(ctx, id); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *ReportStore) accounts(ctx context.Context, reportID string) ([]models.Account, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT bank_name, account_number, account_type,
		current_balance, amount_overdue, address
		FROM report_accounts WHERE report_id = ? ORDER BY position`, reportID)
	if err != nil {
		return nil, fmt.Errorf("error querying accounts for report %s: %w", reportID, err)
	}
	defer rows.Close()

	accounts := []models.Account{}
	for rows.Next() {
		var acc models.Account
		var number, accType sql.NullString
		if err := rows.Scan(&acc.BankName, &number, &accType, &acc.CurrentBalance, &acc.AmountOverdue, &acc.Address); err != nil {
			return nil, fmt.Errorf("error scanning account row: %w", err)
		}
		acc.AccountNumber = nullableString(number)
		acc.AccountType = nullableString(accType)
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}
	return accounts, nil
}

// UpdateDisplayName renames a report and returns the updated record.
func (s *ReportStore) UpdateDisplayName(ctx context.Context, id, displayName string) (*models.StoredReport, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE reports SET display_name = ? WHERE id = ?`, displayName, id)
	if err != nil {
		return nil, fmt.Errorf("error updating report %s: %w", id, err)
	}
	if err := expectOneRow(res); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes a report and its accounts.
func (s *ReportStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reports WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("error deleting report %s: %w", id, err)
	}
	return expectOneRow(res)
}

// Count returns the number of stored reports.
func (s *ReportStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reports`).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting reports: %w", err)
	}
	return n, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows: %w", err)
	}
	if n == 0 {
		return ErrReportNotFound
	}
	return nil
}

func parseUploadedAt(s string) (time.Time, error) {
	t, err := time.Parse(uploadedAtLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid uploaded_at value %q: %w", s, err)
	}
	return t, nil
}

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
