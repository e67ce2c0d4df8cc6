package validate

import (
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	instance *validator.Validate
	once     sync.Once
)

// Struct validates v against its `validate` tags using a shared
// validator instance.
func Struct(v interface{}) error {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
	})
	return instance.Struct(v)
}
