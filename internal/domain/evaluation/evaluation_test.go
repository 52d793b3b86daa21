package evaluation

import (
	"testing"

	"accelerator/internal/domain/applicant"
)

func TestKindAllows(t *testing.T) {
	for _, status := range []Status{StatusNone, StatusAccepted, StatusMaybe, StatusRejected} {
		if !KindDraft.Allows(status) {
			t.Fatalf("expected draft to allow %s", status)
		}
	}
	if KindFinal.Allows(StatusNone) {
		t.Fatal("expected final to reject none")
	}
	if KindFinal.Allows(StatusMaybe) {
		t.Fatal("expected final to reject maybe")
	}
	if !KindFinal.Allows(StatusAccepted) || !KindFinal.Allows(StatusRejected) {
		t.Fatal("expected final to allow accepted and rejected")
	}
}

func TestVerdictMapping(t *testing.T) {
	cases := map[Status]applicant.ResponseStatus{
		StatusAccepted: applicant.ResponseAccepted,
		StatusRejected: applicant.ResponseRejected,
	}
	for in, want := range cases {
		got, ok := in.Verdict()
		if !ok || got != want {
			t.Fatalf("%s: expected %s, got %s (resolved=%v)", in, want, got, ok)
		}
	}
	for _, in := range []Status{StatusNone, StatusMaybe} {
		if _, ok := in.Verdict(); ok {
			t.Fatalf("expected %s to leave the response untouched", in)
		}
	}
}

func TestWriteBackDraftNeverOverridesFinal(t *testing.T) {
	final := Evaluation{ID: "e1", Kind: KindFinal, Status: StatusRejected}

	maybe := Evaluation{ID: "e2", Kind: KindDraft, Status: StatusMaybe}
	if got := WriteBack(maybe, []Evaluation{final}); got != nil {
		t.Fatalf("expected draft maybe to keep the response status, got %s", *got)
	}

	accepted := Evaluation{ID: "e2", Kind: KindDraft, Status: StatusAccepted}
	if got := WriteBack(accepted, []Evaluation{final}); got != nil {
		t.Fatalf("expected draft accepted not to override a final verdict, got %s", *got)
	}
	if got := WriteBack(accepted, nil); got == nil || *got != applicant.ResponseAccepted {
		t.Fatalf("expected draft accepted to decide without a final verdict, got %v", got)
	}

	// the evaluation being rewritten does not count as another final
	if got := WriteBack(Evaluation{ID: "e1", Kind: KindFinal, Status: StatusAccepted}, []Evaluation{final}); got == nil || *got != applicant.ResponseAccepted {
		t.Fatalf("expected final to decide, got %v", got)
	}
}

func TestNormalizeDefaults(t *testing.T) {
	if NormalizeKind("") != KindDraft {
		t.Fatal("expected empty kind to default to draft")
	}
	if NormalizeStatus(" Accepted ") != StatusAccepted {
		t.Fatal("expected status to be normalized")
	}
}
