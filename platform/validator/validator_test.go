package validator

import (
	"strings"
	"testing"
)

type phoneInput struct {
	Phone string `json:"customerPhone" validate:"required,bdphone"`
}

func TestBDPhoneTag(t *testing.T) {
	val := New()

	if err := val.Struct(phoneInput{Phone: "+880 1712-345678"}); err != nil {
		t.Fatalf("expected valid phone, got %v", err)
	}
	if err := val.Struct(phoneInput{Phone: "12345"}); err == nil {
		t.Fatal("expected validation error for short phone")
	}
}

func TestErrorsUseJSONFieldNames(t *testing.T) {
	err := New().Struct(phoneInput{})
	if err == nil {
		t.Fatal("expected required error")
	}
	if !strings.Contains(err.Error(), "customerPhone") {
		t.Fatalf("expected json field name in %q", err.Error())
	}
}
