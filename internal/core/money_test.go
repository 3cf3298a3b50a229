package core

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"0", 0, true},
		{"0.00", 0, true},
		{"1", 100, false},
		{"1.2", 120, false},
		{"1.23", 123, false},
		{"1,23", 123, false},
		{"12.345", 1235, false},
		{"12.344", 1234, false},
		{"351000", 35100000, false},
		{" 7.5 ", 750, false},
		{"-1", 0, true},
		{"+1", 0, true},
		{"abc", 0, true},
		{"1.2.3", 0, true},
		{"", 0, true},
	}
	for _, c := range cases {
		got, err := ParseAmount(c.in)
		if c.wantErr {
			if err == nil {
				t.Fatalf("ParseAmount(%q) expected error", c.in)
			}
			if !errors.Is(err, ErrInvalidAmount) {
				t.Fatalf("ParseAmount(%q) error = %v, want ErrInvalidAmount", c.in, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseAmount(%q) unexpected error: %v", c.in, err)
		}
		if got.Cents != c.want {
			t.Fatalf("ParseAmount(%q) = %d, want %d", c.in, got.Cents, c.want)
		}
	}
}

func TestMoneyJSONUsesMajorUnits(t *testing.T) {
	b, err := json.Marshal(struct {
		Amount Money `json:"amount"`
	}{Money{Cents: 5555555}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"amount":55555.55}` {
		t.Fatalf("unexpected json %s", b)
	}

	var stored struct {
		Amount Money `json:"amount"`
		Quoted Money `json:"quoted"`
		Null   Money `json:"null"`
	}
	if err := json.Unmarshal([]byte(`{"amount":28302,"quoted":"10.5","null":null}`), &stored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if stored.Amount.Cents != 2830200 || stored.Quoted.Cents != 1050 || stored.Null.Cents != 0 {
		t.Fatalf("unexpected decode %+v", stored)
	}
}

func TestMoneyUnmarshalRejectsNonNumeric(t *testing.T) {
	var m Money
	err := json.Unmarshal([]byte(`"mil pesos"`), &m)
	if !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("err = %v, want ErrInvalidAmount", err)
	}
}

func TestMoneyString(t *testing.T) {
	if s := (Money{Cents: 123450}).String(); s != "1234.50" {
		t.Fatalf("String() = %q", s)
	}
	if s := (Money{Cents: -5}).String(); s != "-0.05" {
		t.Fatalf("String() = %q", s)
	}
}
