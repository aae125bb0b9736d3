package backend

import (
	"encoding/json"
	"testing"
)

func TestEnvelopeNormalize(t *testing.T) {
	raw := `{
		"ref": {"@ref": {"id": "352434523"}},
		"data": {
			"name": "Ana Souza",
			"email": "ana@example.com",
			"profession": "Engenheira",
			"sex": "Feminino",
			"created_at": "2024-03-15T10:30:00Z",
			"updated_at": "2024-04-01T08:00:00Z"
		}
	}`

	var env Envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	u := env.Normalize()
	if u.ID != "352434523" {
		t.Errorf("ID = %q, want %q", u.ID, "352434523")
	}
	if u.Name != "Ana Souza" {
		t.Errorf("Name = %q", u.Name)
	}
	if u.Email != "ana@example.com" {
		t.Errorf("Email = %q", u.Email)
	}
	if u.CreatedAt != "15 de março de 2024" {
		t.Errorf("CreatedAt = %q, want %q", u.CreatedAt, "15 de março de 2024")
	}
	if u.UpdatedAt != "01 de abril de 2024" {
		t.Errorf("UpdatedAt = %q, want %q", u.UpdatedAt, "01 de abril de 2024")
	}
}

func TestEnvelopeNormalize_MissingFields(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty object", `{}`},
		{"no ref", `{"data": {"name": "Ana"}}`},
		{"no data", `{"ref": {"@ref": {"id": "1"}}}`},
		{"empty ref", `{"ref": {}, "data": {}}`},
		{"bad timestamps", `{"data": {"created_at": "yesterday", "updated_at": ""}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var env Envelope
			if err := json.Unmarshal([]byte(tt.raw), &env); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}

			// Must not panic; absent fields degrade to blanks.
			u := env.Normalize()
			if tt.name == "no ref" && u.Name != "Ana" {
				t.Errorf("Name = %q, want %q", u.Name, "Ana")
			}
			if tt.name == "bad timestamps" && (u.CreatedAt != "" || u.UpdatedAt != "") {
				t.Errorf("timestamps = %q/%q, want blanks", u.CreatedAt, u.UpdatedAt)
			}
		})
	}
}

func TestListEnvelopeNormalize(t *testing.T) {
	raw := `{
		"data": [
			{"ref": {"@ref": {"id": "1"}}, "data": {"name": "Ana Souza"}},
			{"ref": {"@ref": {"id": "2"}}, "data": {"name": "João César"}}
		],
		"total": 42
	}`

	var list ListEnvelope
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	page := list.Normalize()
	if page.Total != 42 {
		t.Errorf("Total = %d, want 42", page.Total)
	}
	if len(page.Users) != 2 {
		t.Fatalf("len(Users) = %d, want 2", len(page.Users))
	}
	if page.Users[0].ID != "1" || page.Users[1].Name != "João César" {
		t.Errorf("unexpected page contents: %+v", page.Users)
	}
}

func TestListEnvelopeNormalize_Empty(t *testing.T) {
	var list ListEnvelope
	page := list.Normalize()
	if len(page.Users) != 0 || page.Total != 0 {
		t.Errorf("empty list normalized to %+v", page)
	}
}
