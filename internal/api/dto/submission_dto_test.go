package dto

import (
	"testing"
)

func TestToInputFlatFields(t *testing.T) {
	t.Parallel()

	req := SubmissionRequest{
		Email:         "pair@example.com",
		ContactNumber: "0123456789",
		GroomName:     "Ahmad bin Ismail",
		BrideName:     "Aisyah binti Yusof",
		Witnesses: []WitnessRequest{
			{Name: "Hassan bin Omar"},
		},
	}

	input := req.ToInput()
	if input.Email != "pair@example.com" || input.GroomName != "Ahmad bin Ismail" {
		t.Fatalf("flat fields not mapped: %+v", input)
	}
	if len(input.Witnesses) != 1 || input.Witnesses[0].Name != "Hassan bin Omar" {
		t.Fatalf("witnesses not mapped: %+v", input.Witnesses)
	}
}

func TestToInputFieldPairs(t *testing.T) {
	t.Parallel()

	req := SubmissionRequest{
		Fields: []FieldPair{
			{Name: "email", Value: " pair@example.com "},
			{Name: "contactnumber", Value: "0123456789"},
			{Name: "GroomName", Value: "Ahmad bin Ismail"},
			{Name: "bridename", Value: "Aisyah binti Yusof"},
			{Name: "nikahdate", Value: "15-09-2026"},
			{Name: "witness1name", Value: "Hassan bin Omar"},
			{Name: "witness3name", Value: "Ali bin Abu"},
			{Name: "witness3fathername", Value: "Abu bin Bakar"},
		},
	}

	input := req.ToInput()
	if input.Email != "pair@example.com" {
		t.Fatalf("email = %q", input.Email)
	}
	if input.GroomName != "Ahmad bin Ismail" || input.BrideName != "Aisyah binti Yusof" {
		t.Fatalf("names not mapped: %+v", input)
	}
	if input.SolemnisationDate != "15-09-2026" {
		t.Fatalf("nikahdate alias not mapped: %q", input.SolemnisationDate)
	}
	if len(input.Witnesses) != 4 {
		t.Fatalf("witness slots = %d, want all 4 positions", len(input.Witnesses))
	}
	if input.Witnesses[0].Name != "Hassan bin Omar" {
		t.Fatalf("witness slot 1 = %+v", input.Witnesses[0])
	}
	if input.Witnesses[1].Name != "" {
		t.Fatalf("witness slot 2 should stay empty, got %+v", input.Witnesses[1])
	}
	if input.Witnesses[2].Name != "Ali bin Abu" || input.Witnesses[2].FatherName != "Abu bin Bakar" {
		t.Fatalf("witness slot 3 = %+v", input.Witnesses[2])
	}
}

func TestToInputFieldPairsOverrideFlat(t *testing.T) {
	t.Parallel()

	req := SubmissionRequest{
		Email: "flat@example.com",
		Fields: []FieldPair{
			{Name: "email", Value: "pairs@example.com"},
		},
	}
	if input := req.ToInput(); input.Email != "pairs@example.com" {
		t.Fatalf("field pairs must win over flat fields, got %q", input.Email)
	}
}

func TestToInputIgnoresUnknownFieldNames(t *testing.T) {
	t.Parallel()

	req := SubmissionRequest{
		Email: "flat@example.com",
		Fields: []FieldPair{
			{Name: "witness9name", Value: "out of range"},
			{Name: "somethingelse", Value: "ignored"},
		},
	}
	input := req.ToInput()
	if input.Email != "flat@example.com" {
		t.Fatalf("unrelated pairs must not clobber flat fields: %q", input.Email)
	}
	for _, w := range input.Witnesses {
		if w.Name == "out of range" {
			t.Fatal("out-of-range witness slot must be ignored")
		}
	}
}
