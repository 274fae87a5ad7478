package config

import (
	"sync"

	"github.com/go-playground/validator/v10"
	toml "github.com/pelletier/go-toml/v2"
)

// TOML implements koanf.Parser with go-toml.
type TOML struct{}

// Parser returns the TOML parser used for config and preference files.
func Parser() *TOML { return &TOML{} }

func (*TOML) Unmarshal(b []byte) (map[string]interface{}, error) {
	out := make(map[string]interface{})
	if err := toml.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (*TOML) Marshal(m map[string]interface{}) ([]byte, error) {
	return toml.Marshal(m)
}

var (
	validatorOnce sync.Once
	validatorInst *validator.Validate
)

func validate() *validator.Validate {
	validatorOnce.Do(func() {
		validatorInst = validator.New(validator.WithRequiredStructEnabled())
	})
	return validatorInst
}
