package validation

import "testing"

func TestRequired(t *testing.T) {
	v := Violations{}
	Required("nom", "", v)
	Required("ville", "   ", v)
	Required("email", "ok@test.fr", v)
	if v["nom"] != "required" || v["ville"] != "required" {
		t.Fatalf("expected required violations, got %#v", v)
	}
	if _, ok := v["email"]; ok {
		t.Fatalf("email should pass")
	}
}

func TestPositiveFloat(t *testing.T) {
	v := Violations{}
	PositiveFloat("prix", 0, v)
	PositiveFloat("stock", -1, v)
	PositiveFloat("tva", 0.055, v)
	if v["prix"] != "must_be_positive" || v["stock"] != "must_be_positive" {
		t.Fatalf("expected positive violations, got %#v", v)
	}
	if !(Violations{}).Empty() {
		t.Fatalf("fresh violations should be empty")
	}
	if v.Empty() {
		t.Fatalf("violations should not be empty")
	}
}

func TestRangeFloat(t *testing.T) {
	v := Violations{}
	RangeFloat("tva", 0.3, 0, 0.2, v)
	RangeFloat("remise", 0.1, 0, 0.2, v)
	if v["tva"] != "out_of_range" {
		t.Fatalf("expected out_of_range, got %#v", v)
	}
	if _, ok := v["remise"]; ok {
		t.Fatalf("remise should pass")
	}
}

func TestIsUUID(t *testing.T) {
	if !IsUUID("b3a4e7e0-3f7a-4c9e-9b1d-2f6a8c0d4e5f") {
		t.Fatalf("valid uuid rejected")
	}
	for _, s := range []string{"", "abc", "b3a4e7e0-3f7a-4c9e-9b1d"} {
		if IsUUID(s) {
			t.Fatalf("invalid uuid accepted: %q", s)
		}
	}
}

func TestValidateUUIDs(t *testing.T) {
	invalid := ValidateUUIDs([]string{
		"b3a4e7e0-3f7a-4c9e-9b1d-2f6a8c0d4e5f",
		"not-a-uuid",
		"",
	})
	if len(invalid) != 2 {
		t.Fatalf("expected 2 invalid got %d: %v", len(invalid), invalid)
	}
}

func TestSanitizeString(t *testing.T) {
	cases := []struct{ in, want string }{
		{"  Pomme Golden  ", "Pomme Golden"},
		{"a\x00b\x07c", "abc"},
		{"ligne1\nligne2", "ligne1\nligne2"},
		{"tab\there", "tab\there"},
		{"del\x7fchar", "delchar"},
		{"Bio, origine Provence-Alpes-Côte d'Azur", "Bio, origine Provence-Alpes-Côte d'Azur"},
	}
	for _, c := range cases {
		if got := SanitizeString(c.in); got != c.want {
			t.Fatalf("SanitizeString(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
