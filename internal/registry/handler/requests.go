package handler

import (
	id "verdict/pkg/domain"
	dErrors "verdict/pkg/domain-errors"
)

// jurorsRequest carries one or more juror principals.
type jurorsRequest struct {
	Jurors []string `json:"jurors"`
}

// ParsedJurors validates and converts the juror identifiers.
func (r jurorsRequest) ParsedJurors() ([]id.JurorID, error) {
	if len(r.Jurors) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "jurors is required")
	}
	out := make([]id.JurorID, 0, len(r.Jurors))
	for _, s := range r.Jurors {
		jurorID, err := id.ParseJurorID(s)
		if err != nil {
			return nil, err
		}
		out = append(out, jurorID)
	}
	return out, nil
}
