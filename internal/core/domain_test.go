package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in  string
		out Date
		ok  bool
	}{
		{"2025-01-25", NewDate(2025, 1, 25), true},
		{" 2024-02-29 ", NewDate(2024, 2, 29), true},
		{"2023-02-29", Date{}, false},
		{"25/01/2025", Date{}, false},
		{"", Date{}, false},
	}
	for _, tc := range cases {
		got, err := ParseDate(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(tc.out) {
				t.Fatalf("%q expected %v, got %v (err=%v)", tc.in, tc.out, got, err)
			}
		} else if !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("%q expected ErrInvalidDate, got %v", tc.in, err)
		}
	}
}

func TestDateOfDropsClock(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	got := DateOf(time.Date(2025, 3, 10, 23, 30, 0, 0, loc))
	if !got.Equal(NewDate(2025, 3, 10)) {
		t.Fatalf("DateOf() = %v, want 2025-03-10", got)
	}
}

func TestDateJSON(t *testing.T) {
	d := NewDate(2025, 12, 25)
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `"2025-12-25"` {
		t.Fatalf("Marshal = %s", b)
	}
	var back Date
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatal(err)
	}
	if !back.Equal(d) {
		t.Fatalf("round trip = %v, want %v", back, d)
	}
}

func TestIncomeValidate(t *testing.T) {
	today := NewDate(2025, 6, 10)
	tests := []struct {
		name   string
		income Income
		want   error
	}{
		{"ok", Income{Date: today, Amount: Money{Cents: 1}}, nil},
		{"empty description allowed", Income{Date: NewDate(2025, 1, 1), Amount: Money{Cents: 200000}}, nil},
		{"zero amount", Income{Date: today}, ErrInvalidAmount},
		{"future", Income{Date: today.AddDays(1), Amount: Money{Cents: 1}}, ErrFutureDate},
		{"no date", Income{Amount: Money{Cents: 1}}, ErrInvalidDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.income.Validate(today)
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRecurringChargeValidate(t *testing.T) {
	tests := []struct {
		name   string
		charge RecurringCharge
		want   error
	}{
		{"ok", RecurringCharge{Name: "Loyer", Amount: Money{Cents: 80000}}, nil},
		{"blank name", RecurringCharge{Name: "  ", Amount: Money{Cents: 1}}, ErrEmptyName},
		{"negative", RecurringCharge{Name: "x", Amount: Money{Cents: -5}}, ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.charge.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestExpenseValidate(t *testing.T) {
	today := NewDate(2025, 6, 10)
	good := Expense{Date: today, Description: "Courses", Amount: Money{Cents: 4250}}
	if err := good.Validate(today); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []struct {
		e    Expense
		want error
	}{
		{Expense{Date: today, Amount: Money{Cents: 1}}, ErrEmptyDescription},
		{Expense{Date: today, Description: "a"}, ErrInvalidAmount},
		{Expense{Description: "a", Amount: Money{Cents: 1}}, ErrInvalidDate},
		{Expense{Date: today.AddDays(3), Description: "a", Amount: Money{Cents: 1}}, ErrFutureDate},
	}
	for i, tc := range bads {
		if err := tc.e.Validate(today); !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestIsValidation(t *testing.T) {
	if !IsValidation(fmt.Errorf("add expense: %w", ErrEmptyDescription)) {
		t.Error("wrapped ErrEmptyDescription should be a validation error")
	}
	if IsValidation(ErrNotFound) {
		t.Error("ErrNotFound is not a validation error")
	}
	if IsValidation(errors.New("disk full")) {
		t.Error("arbitrary errors are not validation errors")
	}
}
