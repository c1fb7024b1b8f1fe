package validator

import "testing"

func TestV10ValidatorOperationID(t *testing.T) {
	v, err := NewV10Validator()
	if err != nil {
		t.Fatalf("expected validator to build, got %v", err)
	}

	type payload struct {
		OperationID string `validate:"required,operation_id"`
	}

	valid := []string{
		"login",
		"payment.confirm",
		"account:delete",
		"with-dash_and.dot",
		"a",
	}
	for _, op := range valid {
		if err := v.Validate(payload{OperationID: op}); err != nil {
			t.Fatalf("expected %q to be a valid operation id, got %v", op, err)
		}
	}

	invalid := []string{
		"-leading-dash",
		".leading-dot",
		"has space",
		"emojié",
	}
	for _, op := range invalid {
		if err := v.Validate(payload{OperationID: op}); err == nil {
			t.Fatalf("expected %q to be rejected", op)
		}
	}
}

func TestV10ValidatorAlphaSpace(t *testing.T) {
	v, err := NewV10Validator()
	if err != nil {
		t.Fatalf("expected validator to build, got %v", err)
	}

	type payload struct {
		FullName string `validate:"required,alphaspace"`
	}

	if err := v.Validate(payload{FullName: "Jane Doe"}); err != nil {
		t.Fatalf("expected plain name to pass, got %v", err)
	}
	if err := v.Validate(payload{FullName: "Jane99"}); err == nil {
		t.Fatalf("expected digits to be rejected")
	}
}
