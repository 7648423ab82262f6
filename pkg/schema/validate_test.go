package schema

import (
	"errors"
	"testing"

	"github.com/aretw0/espalier/pkg/domain"
)

func TestValidateConfiguration_Success(t *testing.T) {
	nt := &NodeType{
		ID: "http_request",
		Fields: []Field{
			{Key: "url", Type: "string"},
			{Key: "retries", Type: "int"},
			{Key: "timeout", Type: "float"},
			{Key: "verbose", Type: "bool"},
			{Key: "method", Type: "enum(GET|POST)"},
		},
	}

	cfg := map[string]string{
		"url":     "https://example.com",
		"retries": "3",
		"timeout": "30.5",
		"verbose": "true",
		"method":  "POST",
	}

	if err := ValidateConfiguration(nt, cfg); err != nil {
		t.Errorf("ValidateConfiguration() error = %v, want nil", err)
	}
}

func TestValidateConfiguration_MissingField(t *testing.T) {
	nt := &NodeType{
		ID: "http_request",
		Fields: []Field{
			{Key: "url", Type: "string"},
			{Key: "retries", Type: "int"},
		},
	}

	cfg := map[string]string{
		"url": "https://example.com",
		// missing retries
	}

	err := ValidateConfiguration(nt, cfg)
	if err == nil {
		t.Fatal("ValidateConfiguration() should return error for missing field")
	}

	aggr, ok := err.(*AggregateError)
	if !ok {
		t.Fatalf("error should be *AggregateError, got %T", err)
	}
	if len(aggr.Errors) != 1 {
		t.Errorf("ValidateConfiguration() = %d errors, want 1", len(aggr.Errors))
	}

	validErr, ok := aggr.Errors[0].(*ValidationError)
	if !ok {
		t.Fatalf("error should be *ValidationError, got %T", aggr.Errors[0])
	}
	if validErr.Key != "retries" {
		t.Errorf("error key = %q, want %q", validErr.Key, "retries")
	}
}

func TestValidateConfiguration_DefaultSatisfiesRequired(t *testing.T) {
	nt := &NodeType{
		ID: "http_request",
		Fields: []Field{
			{Key: "method", Type: "enum(GET|POST)", Default: "GET"},
		},
	}

	if err := ValidateConfiguration(nt, map[string]string{}); err != nil {
		t.Errorf("fields with a default should not be required, got %v", err)
	}
}

func TestValidateConfiguration_CollectsAllFailures(t *testing.T) {
	nt := &NodeType{
		ID: "http_request",
		Fields: []Field{
			{Key: "retries", Type: "int"},
			{Key: "timeout", Type: "float"},
		},
	}

	cfg := map[string]string{
		"retries": "many",
		"timeout": "soon",
	}

	err := ValidateConfiguration(nt, cfg)
	if err == nil {
		t.Fatal("ValidateConfiguration() should fail")
	}
	if got := len(ValidationErrors(err)); got != 2 {
		t.Errorf("expected 2 collected errors, got %d", got)
	}
}

func TestValidateConfiguration_UnknownKeysTolerated(t *testing.T) {
	nt := &NodeType{
		ID: "log",
		Fields: []Field{
			{Key: "level", Type: "enum(debug|info|error)"},
		},
	}

	cfg := map[string]string{
		"level":         "info",
		"x-private-key": "host data",
	}

	if err := ValidateConfiguration(nt, cfg); err != nil {
		t.Errorf("unknown keys should be tolerated, got %v", err)
	}
}

func TestValidateConfiguration_NoSchemaNoValidation(t *testing.T) {
	if err := ValidateConfiguration(nil, map[string]string{"anything": "goes"}); err != nil {
		t.Errorf("nil type should skip validation, got %v", err)
	}
	if err := ValidateConfiguration(&NodeType{ID: "bare"}, map[string]string{"a": "b"}); err != nil {
		t.Errorf("type without fields should skip validation, got %v", err)
	}
}

func TestCheckPorts(t *testing.T) {
	source := &NodeType{
		ID: "trigger",
		Ports: []Port{
			{ID: "out", Direction: domain.PortSource, Kind: "flow"},
			{ID: "err", Direction: domain.PortSource, Kind: "error"},
			{ID: "fb", Direction: domain.PortTarget},
		},
	}
	target := &NodeType{
		ID: "action",
		Ports: []Port{
			{ID: "in", Direction: domain.PortTarget, Kind: "flow"},
			{ID: "any", Direction: domain.PortTarget},
		},
	}

	tests := []struct {
		name       string
		sourcePort string
		targetPort string
		wantErr    bool
	}{
		{"Matching Kinds", "out", "in", false},
		{"Wildcard Target Kind", "err", "any", false},
		{"Kind Mismatch", "err", "in", true},
		{"Missing Source Port", "ghost", "in", true},
		{"Missing Target Port", "out", "ghost", true},
		{"Source Port Wrong Direction", "fb", "in", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckPorts(source, tt.sourcePort, target, tt.targetPort)
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckPorts() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, domain.ErrIncompatiblePort) {
				t.Errorf("error should wrap ErrIncompatiblePort, got %v", err)
			}
		})
	}
}

func TestCheckPorts_WrongDirectionOnTargetSide(t *testing.T) {
	nt := &NodeType{
		ID: "both",
		Ports: []Port{
			{ID: "out", Direction: domain.PortSource},
			{ID: "in", Direction: domain.PortTarget},
		},
	}

	// Using a source-direction port as the target must fail.
	err := CheckPorts(nt, "out", nt, "out")
	if !errors.Is(err, domain.ErrIncompatiblePort) {
		t.Errorf("expected ErrIncompatiblePort, got %v", err)
	}
}
