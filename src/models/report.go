// src/models/report.go
package models

import "time"

// ParsedReport is the normalized content extracted from one bureau document.
type ParsedReport struct {
	BasicDetails  BasicDetails  `json:"basicDetails" yaml:"basicDetails"`
	ReportSummary ReportSummary `json:"reportSummary" yaml:"reportSummary"`
	Accounts      []Account     `json:"accounts" yaml:"accounts"`
}

// BasicDetails identifies the applicant. MobilePhone and PAN are nil when the
// document does not carry them.
type BasicDetails struct {
	Name        string  `json:"name" yaml:"name"`
	MobilePhone *string `json:"mobilePhone" yaml:"mobilePhone"`
	PAN         *string `json:"pan" yaml:"pan"`
	CreditScore int     `json:"creditScore" yaml:"creditScore"`
}

// ReportSummary holds the aggregate figures of the report.
type ReportSummary struct {
	TotalAccounts      int   `json:"totalAccounts" yaml:"totalAccounts"`
	ActiveAccounts     int   `json:"activeAccounts" yaml:"activeAccounts"`
	ClosedAccounts     int   `json:"closedAccounts" yaml:"closedAccounts"`
	CurrentBalance     int64 `json:"currentBalance" yaml:"currentBalance"`     // Outstanding_Balance_All
	SecuredBalance     int64 `json:"securedBalance" yaml:"securedBalance"`     // Outstanding_Balance_Secured
	UnsecuredBalance   int64 `json:"unsecuredBalance" yaml:"unsecuredBalance"` // Outstanding_Balance_UnSecured
	EnquiriesLast7Days int   `json:"enquiriesLast7Days" yaml:"enquiriesLast7Days"`
}

// Account is one credit account row of the report.
type Account struct {
	BankName       string  `json:"bankName" yaml:"bankName"`
	AccountNumber  *string `json:"accountNumber" yaml:"accountNumber"`
	AccountType    *string `json:"accountType" yaml:"accountType"` // e.g. 10 = credit card, 51 = loan
	CurrentBalance int64   `json:"currentBalance" yaml:"currentBalance"`
	AmountOverdue  int64   `json:"amountOverdue" yaml:"amountOverdue"`
	Address        string  `json:"address" yaml:"address"`
}

// StoredReport is a ParsedReport together with its storage metadata.
type StoredReport struct {
	ID          string    `json:"id"`
	FileName    string    `json:"fileName"`
	DisplayName string    `json:"displayName"`
	UploadedAt  time.Time `json:"uploadedAt"`
	ParsedReport
}

// ReportListItem is the summary row returned when listing reports.
type ReportListItem struct {
	ID          string    `json:"id"`
	FileName    string    `json:"fileName"`
	DisplayName string    `json:"displayName"`
	UploadedAt  time.Time `json:"uploadedAt"`
}
