package api

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/horizonmoine/bballcoach-ai-v2-dev/internal/biomech"
	"github.com/horizonmoine/bballcoach-ai-v2-dev/internal/store"
)

// newValidator returns a validator that also knows the `cue` tag. It panics
// if the tag cannot be registered, which only a programming error causes.
func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("cue", validCue); err != nil {
		panic(fmt.Sprintf("api: register cue validation: %v", err))
	}
	return v
}

func validCue(fl validator.FieldLevel) bool {
	return knownCue(fl.Field().String())
}

func knownCue(s string) bool {
	for _, c := range biomech.Cues {
		if string(c) == s {
			return true
		}
	}
	return false
}

var settingKeys = []string{
	store.SettingLanguage,
	store.SettingCoachMuted,
	store.SettingVoicePlugin,
}

func knownSetting(s string) bool {
	for _, k := range settingKeys {
		if k == s {
			return true
		}
	}
	return false
}
