package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"market-maker-sim/simerr"
	"market-maker-sim/source"
	"market-maker-sim/strategy"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// 错误信息里使用 yaml 字段名
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate ensures the config is usable; every error wraps simerr.ErrConfiguration.
func Validate(cfg SimConfig) error {
	if err := validateStruct(cfg); err != nil {
		return err
	}
	switch cfg.Source.Type {
	case source.TypeBrownian:
		if err := validateStruct(cfg.Source.Brownian); err != nil {
			return fmt.Errorf("source.brownian: %w", err)
		}
	case source.TypeHistorical:
		if err := validateStruct(cfg.Source.Historical); err != nil {
			return fmt.Errorf("source.historical: %w", err)
		}
	case source.TypeReplay:
		if err := validateStruct(cfg.Source.Replay); err != nil {
			return fmt.Errorf("source.replay: %w", err)
		}
	}
	if cfg.Env == EnvBar && cfg.Source.Type == source.TypeBrownian {
		return fmt.Errorf("%w: env bar needs OHLC data, brownian source has close only", simerr.ErrConfiguration)
	}

	var err error
	switch cfg.Policy.Type {
	case PolicyASMM:
		err = cfg.Policy.ASMM.Validate()
	case PolicySkew:
		_, err = strategy.NewInventorySkew(cfg.Policy.Skew)
	case PolicyFixed:
		_, err = strategy.NewFixedSpread(cfg.Policy.Fixed.HalfSpread, cfg.Policy.Fixed.Size)
	}
	if err != nil {
		return fmt.Errorf("policy.%s: %w", cfg.Policy.Type, err)
	}
	return nil
}

// ValidateMarket 校验市场常量。
func ValidateMarket(m MarketConfig) error {
	return validateStruct(m)
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		msgs := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s (got %v)", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value()))
		}
		return fmt.Errorf("%w: %s", simerr.ErrConfiguration, strings.Join(msgs, "; "))
	}
	return fmt.Errorf("%w: %v", simerr.ErrConfiguration, err)
}
