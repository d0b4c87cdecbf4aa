/*
Package content turns a race content configuration into the text both players type.

Text comes from an OpenAI-compatible chat completion endpoint when one is configured,
otherwise from a local word bank.
*/
package content

import (
	"strings"

	"typerace/internal/app/race"
	"typerace/internal/pkg/errs"
)

// paragraphPrompts is keyed by level, then genre.
var paragraphPrompts = map[string]map[string]string{
	race.LevelBeginner: {
		"general":   "Write a simple, beginner-friendly paragraph about {genre}.",
		"technical": "Create a beginner-level paragraph that introduces {genre}.",
		"creative":  "Write an engaging, simple paragraph about {genre}.",
	},
	race.LevelIntermediate: {
		"general":   "Compose a detailed paragraph about {genre} with deeper insights.",
		"technical": "Write an intermediate-level paragraph explaining {genre}.",
		"creative":  "Craft a creative and thought-provoking paragraph on {genre}.",
	},
	race.LevelExpert: {
		"general":   "Write an advanced, analytical paragraph about {genre}.",
		"technical": "Compose a complex paragraph on {genre} with in-depth insights.",
		"creative":  "Create an intellectually challenging paragraph about {genre}.",
	},
}

// codePrompts is keyed by level, language, then genre.
var codePrompts = map[string]map[string]map[string]string{
	race.LevelBeginner: {
		race.LanguageJavaScript: {
			"algorithm":     "Write a simple JavaScript function for {genre}.",
			"dataStructure": "Implement a basic {genre} structure in JavaScript.",
			"utility":       "Develop a basic JavaScript utility function for {genre}.",
		},
		race.LanguagePython: {
			"algorithm":     "Write a Python function implementing {genre}.",
			"dataStructure": "Create a simple {genre} implementation in Python.",
			"utility":       "Develop a basic Python script for {genre}.",
		},
	},
	race.LevelIntermediate: {
		race.LanguageJavaScript: {
			"algorithm":     "Implement an intermediate {genre} algorithm in JavaScript.",
			"dataStructure": "Create an advanced {genre} structure in JavaScript.",
			"utility":       "Write a JavaScript utility handling {genre} efficiently.",
		},
		race.LanguagePython: {
			"algorithm":     "Write a Python implementation for an intermediate {genre}.",
			"dataStructure": "Develop an optimized {genre} data structure in Python.",
			"utility":       "Create a Python utility function handling {genre}.",
		},
	},
	race.LevelExpert: {
		race.LanguageJavaScript: {
			"algorithm":     "Develop a complex JavaScript algorithm for {genre}.",
			"dataStructure": "Implement an expert-level {genre} in JavaScript.",
			"utility":       "Create an advanced JavaScript utility function for {genre}.",
		},
		race.LanguagePython: {
			"algorithm":     "Implement an advanced {genre} algorithm in Python.",
			"dataStructure": "Develop an optimized Python structure for {genre}.",
			"utility":       "Write a sophisticated Python utility for {genre}.",
		},
	},
}

// Prompt returns the instruction sent to the language model for cfg.
func Prompt(cfg race.ContentConfig) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}

	var template string
	if cfg.Type == race.TypeCode {
		template = codePrompts[cfg.Level][cfg.Language][cfg.Genre]
	} else {
		template = paragraphPrompts[cfg.Level][cfg.Genre]
	}

	if template == "" {
		return "", errs.NewError(errs.ErrInvalidGenre)
	}
	return strings.ReplaceAll(template, "{genre}", cfg.Genre), nil
}

// MaxTokens is the completion budget for a content type.
func MaxTokens(contentType string) int {
	if contentType == race.TypeCode {
		return 500
	}
	return 300
}
