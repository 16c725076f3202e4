package cmd

import (
	"strings"

	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"

	"github.com/etnz/realreturn"
	"github.com/etnz/realreturn/docs"
)

// Completion describes the command line for shell completion.
//
// Install it with `COMP_INSTALL=1 rra`.
func Completion() *complete.Command {
	codes := realreturn.Currencies()
	lower := make([]string, len(codes))
	for i, c := range codes {
		lower[i] = strings.ToLower(c)
	}
	currencies := predict.Set(append(codes, lower...))
	configFiles := predict.Files("*.yaml")
	topics, _ := docs.All()

	return &complete.Command{
		Sub: map[string]*complete.Command{
			"analyze": {
				Flags: map[string]complete.Predictor{
					"start":        predict.Something,
					"end":          predict.Something,
					"start-value":  predict.Something,
					"end-value":    predict.Something,
					"base":         currencies,
					"currencies":   currencies,
					"cagr":         predict.Nothing,
					"o":            predict.Set{"table", "json", "csv"},
					"refresh":      predict.Nothing,
					"fred-api-key": predict.Something,
					"metrics-file": predict.Files("*.prom"),
				},
			},
			"cache": {
				Sub: map[string]*complete.Command{
					"status": {},
					"clear":  {},
				},
			},
			"topic": {
				Args: predict.Set(append(topics, "*")),
			},
			"help":     {},
			"commands": {},
			"flags":    {},
		},
		Flags: map[string]complete.Predictor{
			"config": configFiles,
			"v":      predict.Nothing,
		},
	}
}
