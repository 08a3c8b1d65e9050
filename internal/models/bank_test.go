package models

import (
	"errors"
	"testing"
)

func validBankInput() BankAccountInput {
	return BankAccountInput{
		AccountHolderName:    " Asha ",
		AccountNumber:        "1234567890",
		ConfirmAccountNumber: "1234567890",
		IFSCCode:             "sbin0001234",
		BankName:             "SBI",
		BranchName:           "MG Road",
	}
}

func TestBankAccountInput_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(in *BankAccountInput)
		wantErr error
	}{
		{"valid", func(in *BankAccountInput) {}, nil},
		{"missing branch", func(in *BankAccountInput) { in.BranchName = "  " }, ErrBankFieldsRequired},
		{"missing ifsc", func(in *BankAccountInput) { in.IFSCCode = "" }, ErrBankFieldsRequired},
		{"mismatch", func(in *BankAccountInput) { in.ConfirmAccountNumber = "1234567899" }, ErrAccountNumbersDiffer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validBankInput()
			tt.mutate(&in)
			err := in.Validate()
			if tt.wantErr == nil && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestBankAccountInput_Account(t *testing.T) {
	a := validBankInput().Account()
	if a.AccountName != "Asha" {
		t.Errorf("Expected trimmed name, got %q", a.AccountName)
	}
	if a.IFSCCode != "SBIN0001234" {
		t.Errorf("Expected upper-cased IFSC, got %q", a.IFSCCode)
	}
	if a.MaskedNumber() != "****7890" {
		t.Errorf("Expected masked number, got %q", a.MaskedNumber())
	}
}
