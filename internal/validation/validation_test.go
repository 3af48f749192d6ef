package validation

import (
	"errors"
	"testing"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{name: "valid email", email: "test@example.com"},
		{name: "valid email with subdomain", email: "user@mail.example.com"},
		{name: "valid email with plus", email: "user+tag@example.com"},
		{name: "missing @", email: "testexample.com", wantErr: true},
		{name: "missing domain", email: "test@", wantErr: true},
		{name: "missing local part", email: "@example.com", wantErr: true},
		{name: "empty string", email: "", wantErr: true},
		{name: "spaces in email", email: "test @example.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEmail(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePIN(t *testing.T) {
	tests := []struct {
		name    string
		pin     string
		wantErr bool
	}{
		{name: "four digits", pin: "1234"},
		{name: "leading zero", pin: "0007"},
		{name: "empty", pin: "", wantErr: true},
		{name: "three digits", pin: "123", wantErr: true},
		{name: "five digits", pin: "12345", wantErr: true},
		{name: "letters", pin: "12ab", wantErr: true},
		{name: "spaces", pin: "12 4", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePIN(tt.pin)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePIN(%q) error = %v, wantErr %v", tt.pin, err, tt.wantErr)
			}
			if err != nil {
				var verr ValidationError
				if !errors.As(err, &verr) || verr.Field != "parentPin" {
					t.Errorf("ValidatePIN(%q) returned %T, want ValidationError on parentPin", tt.pin, err)
				}
			}
		})
	}
}
