package aggregates

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorCodes(t *testing.T) {
	err := ValidationError("Svc.Op", "name required")
	if !IsCode(err, CodeValidation) {
		t.Error("validation error must carry the validation code")
	}
	if IsCode(err, CodeNotFound) {
		t.Error("codes must not match across kinds")
	}
	if CodeOf(err) != CodeValidation {
		t.Errorf("CodeOf = %s", CodeOf(err))
	}
	if !strings.Contains(err.Error(), "name required") {
		t.Errorf("message lost: %q", err.Error())
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(CodeInternal, "Repo.Get", cause)
	if !errors.Is(err, cause) {
		t.Error("wrapped cause must be reachable via errors.Is")
	}
	if CodeOf(err) != CodeInternal {
		t.Errorf("CodeOf = %s", CodeOf(err))
	}

	// Wrapping again with fmt keeps the code visible through the chain.
	outer := fmt.Errorf("caller context: %w", err)
	if !IsCode(outer, CodeInternal) {
		t.Error("IsCode must unwrap nested errors")
	}
}

func TestCodeOfPlainError(t *testing.T) {
	if CodeOf(errors.New("plain")) != "" {
		t.Error("plain errors carry no code")
	}
	if IsCode(nil, CodeInternal) {
		t.Error("nil error carries no code")
	}
}
