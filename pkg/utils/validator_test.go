package utils

import (
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
)

type sampleRequest struct {
	ProjectName   string `validate:"required,max=100"`
	RepositoryURL string `validate:"required,url"`
	Target        string `validate:"omitempty,oneof=aws local"`
}

func TestFormatValidationError_AllFields(t *testing.T) {
	v := validator.New()

	// 两个字段同时缺失, 错误报告必须都包含
	err := v.Struct(&sampleRequest{})
	if err == nil {
		t.Fatal("expected validation error")
	}

	msg := FormatValidationError(err)
	if !strings.Contains(msg, "ProjectName") {
		t.Errorf("message %q missing ProjectName", msg)
	}
	if !strings.Contains(msg, "RepositoryURL") {
		t.Errorf("message %q missing RepositoryURL", msg)
	}
}

func TestFormatValidationError_OneOf(t *testing.T) {
	v := validator.New()

	err := v.Struct(&sampleRequest{
		ProjectName:   "myapp",
		RepositoryURL: "https://github.com/acme/myapp",
		Target:        "azure",
	})
	if err == nil {
		t.Fatal("expected validation error")
	}

	msg := FormatValidationError(err)
	if !strings.Contains(msg, "aws local") {
		t.Errorf("message %q missing allowed values", msg)
	}
}

func TestFormatValidationError_Nil(t *testing.T) {
	if got := FormatValidationError(nil); got != "" {
		t.Errorf("expected empty message, got %q", got)
	}
}
