package models

import (
	"errors"
	"strings"
)

var (
	ErrBankFieldsRequired   = errors.New("all bank details are required")
	ErrAccountNumbersDiffer = errors.New("account numbers do not match")
)

// BankAccount is the withdrawal destination bound to a user
type BankAccount struct {
	AccountName   string `json:"account_name"`
	AccountNumber string `json:"account_number"`
	BankName      string `json:"bank_name"`
	IFSCCode      string `json:"ifsc_code"`
}

// MaskedNumber hides all but the last four digits
func (b BankAccount) MaskedNumber() string {
	n := strings.TrimSpace(b.AccountNumber)
	if len(n) <= 4 {
		return n
	}
	return strings.Repeat("*", 4) + n[len(n)-4:]
}

// BankDetails is the response of the bank-details lookup
type BankDetails struct {
	Exists  bool         `json:"exists"`
	Account *BankAccount `json:"account,omitempty"`
}

// BankAccountInput is the add-bank form
type BankAccountInput struct {
	AccountHolderName    string
	AccountNumber        string
	ConfirmAccountNumber string
	IFSCCode             string
	BankName             string
	BranchName           string
}

// Normalize trims every field and upper-cases the IFSC code
func (in BankAccountInput) Normalize() BankAccountInput {
	return BankAccountInput{
		AccountHolderName:    strings.TrimSpace(in.AccountHolderName),
		AccountNumber:        strings.TrimSpace(in.AccountNumber),
		ConfirmAccountNumber: strings.TrimSpace(in.ConfirmAccountNumber),
		IFSCCode:             strings.ToUpper(strings.TrimSpace(in.IFSCCode)),
		BankName:             strings.TrimSpace(in.BankName),
		BranchName:           strings.TrimSpace(in.BranchName),
	}
}

// Validate runs the local checks that must pass before anything is sent
func (in BankAccountInput) Validate() error {
	n := in.Normalize()
	if n.AccountHolderName == "" || n.AccountNumber == "" || n.ConfirmAccountNumber == "" ||
		n.IFSCCode == "" || n.BankName == "" || n.BranchName == "" {
		return ErrBankFieldsRequired
	}
	if n.AccountNumber != n.ConfirmAccountNumber {
		return ErrAccountNumbersDiffer
	}
	return nil
}

// Account converts the form into the account that gets submitted
func (in BankAccountInput) Account() BankAccount {
	n := in.Normalize()
	return BankAccount{
		AccountName:   n.AccountHolderName,
		AccountNumber: n.AccountNumber,
		BankName:      n.BankName,
		IFSCCode:      n.IFSCCode,
	}
}
