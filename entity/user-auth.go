package entity

import (
	"net/http"

	"github.com/pebosi/zammad/internal/lib/validate"
)

type UserAuth struct {
	Username string `json:"username" bson:"username" validate:"required"`
	Token    string `json:"token" bson:"token" validate:"required,min=1"`
}

func (u *UserAuth) Bind(_ *http.Request) error {
	return validate.Struct(u)
}
