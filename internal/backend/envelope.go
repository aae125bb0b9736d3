package backend

import (
	"github.com/jandash/jandash/internal/model"
	"github.com/jandash/jandash/internal/util"
)

// Envelope is the backend's wire-level wrapper around a stored user record.
// The record's own fields sit under "data" and the database-assigned
// identifier under "ref"."@ref"."id". This shape never leaves this package.
type Envelope struct {
	Ref  *Ref         `json:"ref"`
	Data EnvelopeData `json:"data"`
}

// Ref is the backend's document-reference metadata.
type Ref struct {
	Inner RefInner `json:"@ref"`
}

// RefInner carries the actual identifier inside a Ref.
type RefInner struct {
	ID string `json:"id"`
}

// EnvelopeData holds the user fields nested under the envelope's data key.
type EnvelopeData struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Profession string `json:"profession"`
	Sex        string `json:"sex"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// ListEnvelope is the wire shape of one listing page.
type ListEnvelope struct {
	Data  []Envelope `json:"data"`
	Total int64      `json:"total"`
}

// Normalize unwraps an envelope into the stable domain record. Absent or
// malformed nested fields degrade to blank values, so a partial backend
// document must never take a listing page down.
func (e Envelope) Normalize() model.User {
	u := model.User{
		Name:       e.Data.Name,
		Email:      e.Data.Email,
		Profession: e.Data.Profession,
		Sex:        e.Data.Sex,
		CreatedAt:  util.FormatLongDateString(e.Data.CreatedAt),
		UpdatedAt:  util.FormatLongDateString(e.Data.UpdatedAt),
	}
	if e.Ref != nil {
		u.ID = e.Ref.Inner.ID
	}
	return u
}

// Normalize unwraps a listing page into domain records.
func (l ListEnvelope) Normalize() model.UserPage {
	page := model.UserPage{
		Users: make([]model.User, 0, len(l.Data)),
		Total: l.Total,
	}
	for _, env := range l.Data {
		page.Users = append(page.Users, env.Normalize())
	}
	return page
}
