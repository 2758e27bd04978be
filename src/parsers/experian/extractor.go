// src/parsers/experian/extractor.go
package experian

import (
	"strconv"
	"strings"

	"github.com/username/creditreport/src/models"
	"github.com/username/creditreport/src/parsers/parsererror"
	"github.com/username/creditreport/src/parsers/xmltree"
)

// RootElement is the envelope every Experian credit profile response is wrapped in.
const RootElement = "INProfileResponse"

const (
	applicantPath = "Current_Application.Current_Applicant_Details"
	accountsPath  = "CAIS_Account.CAIS_Account_DETAILS"
	summaryPath   = "CAIS_Account.CAIS_Summary"
	holderPANPath = "CAIS_Holder_ID_Details.0.Income_TAX_PAN"
	addressTag    = "CAIS_Holder_Address_Details"
)

// panSlots are the account blocks searched for the applicant's PAN, in order.
// Documents place it under either of the first two account holders.
var panSlots = []string{
	accountsPath + ".0." + holderPANPath,
	accountsPath + ".1." + holderPANPath,
}

type summaryField struct {
	path string
	set  func(s *models.ReportSummary, v int64)
}

// summaryFields are relative to the report root.
var summaryFields = []summaryField{
	{summaryPath + ".Credit_Account.CreditAccountTotal", func(s *models.ReportSummary, v int64) { s.TotalAccounts = int(v) }},
	{summaryPath + ".Credit_Account.CreditAccountActive", func(s *models.ReportSummary, v int64) { s.ActiveAccounts = int(v) }},
	{summaryPath + ".Credit_Account.CreditAccountClosed", func(s *models.ReportSummary, v int64) { s.ClosedAccounts = int(v) }},
	{summaryPath + ".Total_Outstanding_Balance.Outstanding_Balance_All", func(s *models.ReportSummary, v int64) { s.CurrentBalance = v }},
	{summaryPath + ".Total_Outstanding_Balance.Outstanding_Balance_Secured", func(s *models.ReportSummary, v int64) { s.SecuredBalance = v }},
	{summaryPath + ".Total_Outstanding_Balance.Outstanding_Balance_UnSecured", func(s *models.ReportSummary, v int64) { s.UnsecuredBalance = v }},
	{"TotalCAPS_Summary.TotalCAPSLast7Days", func(s *models.ReportSummary, v int64) { s.EnquiriesLast7Days = int(v) }},
}

// addressFields are joined in this order to build an account's address.
var addressFields = []string{
	"First_Line_Of_Address_non_normalized",
	"Second_Line_Of_Address_non_normalized",
	"Third_Line_Of_Address_non_normalized",
	"City_non_normalized",
	"ZIP_Postal_Code_non_normalized",
}

// Extractor turns Experian XML credit reports into models.ParsedReport values.
// It holds no state and is safe for concurrent use.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract parses raw and returns the normalized report. It fails only with a
// *parsererror.MalformedInputError or a *parsererror.UnrecognizedSchemaError; absent
// or unparsable fields fall back to their defaults.
func (x *Extractor) Extract(raw []byte) (*models.ParsedReport, error) {
	root, err := xmltree.Parse(raw)
	if err != nil {
		return nil, parsererror.NewMalformedInputError(err)
	}
	if root.Name != RootElement {
		return nil, parsererror.NewUnrecognizedSchemaError(RootElement, root.Name)
	}

	return &models.ParsedReport{
		BasicDetails:  basicDetails(root),
		ReportSummary: reportSummary(root),
		Accounts:      accounts(root),
	}, nil
}

func basicDetails(report *xmltree.Element) models.BasicDetails {
	applicant := report.Find(applicantPath)

	first := applicant.Lookup("First_Name", "")
	last := applicant.Lookup("Last_Name", "")

	return models.BasicDetails{
		Name:        strings.TrimSpace(first + " " + last),
		MobilePhone: optional(applicant.Lookup("MobilePhoneNumber", "")),
		PAN:         findPAN(report),
		CreditScore: int(parseCount(report.Lookup("SCORE.BureauScore", ""))),
	}
}

func findPAN(report *xmltree.Element) *string {
	for _, path := range panSlots {
		if pan := report.Lookup(path, ""); pan != "" {
			return &pan
		}
	}
	return nil
}

func reportSummary(report *xmltree.Element) models.ReportSummary {
	var summary models.ReportSummary
	for _, f := range summaryFields {
		f.set(&summary, parseCount(report.Lookup(f.path, "")))
	}
	return summary
}

func accounts(report *xmltree.Element) []models.Account {
	blocks := report.Resolve(accountsPath)
	out := make([]models.Account, 0, len(blocks))
	for _, acc := range blocks {
		out = append(out, models.Account{
			BankName:       strings.TrimSpace(acc.Lookup("Subscriber_Name", "")),
			AccountNumber:  optional(acc.Lookup("Account_Number", "")),
			AccountType:    optional(acc.Lookup("Account_Type", "")),
			CurrentBalance: parseCount(acc.Lookup("Current_Balance", "")),
			AmountOverdue:  parseCount(acc.Lookup("Amount_Past_Due", "")),
			Address:        joinAddress(acc.Child(addressTag)),
		})
	}
	return out
}

func joinAddress(addr *xmltree.Element) string {
	parts := make([]string, 0, len(addressFields))
	for _, field := range addressFields {
		if v := addr.Lookup(field, ""); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ", ")
}

// parseCount reads a non-negative decimal integer, allowing surrounding whitespace.
// Anything else, including signs, fractions and overflow, reads as 0.
func parseCount(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
