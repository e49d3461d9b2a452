// Package moderation is the safety layer that screens tasks before they
// reach a model provider. It blocks requests related to illegal activities,
// hate speech, harassment, spam, and other harmful content.
//
// The ruleset lives in the embedded rules.yaml: a first-pass allowlist for
// technical phrasing ("kill a process"), then blocked categories checked in
// a fixed order, most specific first. Pattern matching is a fast keyword
// filter, not a guarantee; any stricter policy belongs in the provider.
package moderation

import (
	_ "embed"
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var rulesYAML []byte

// Error reports a task blocked by content moderation. Message is safe to
// show to the user; it never echoes the blocked content.
type Error struct {
	Category string
	Message  string
}

func (e *Error) Error() string { return e.Message }

type ruleset struct {
	Allow      []string `yaml:"allow"`
	Categories []struct {
		Name        string   `yaml:"name"`
		Description string   `yaml:"description"`
		Message     string   `yaml:"message"`
		Patterns    []string `yaml:"patterns"`
	} `yaml:"categories"`
}

type compiledRule struct {
	category string
	pattern  *regexp.Regexp
	message  string
}

var (
	allowed  []*regexp.Regexp
	compiled []compiledRule
)

func init() {
	var rules ruleset
	if err := yaml.Unmarshal(rulesYAML, &rules); err != nil {
		panic(fmt.Sprintf("moderation: invalid rules.yaml: %v", err))
	}

	for _, p := range rules.Allow {
		allowed = append(allowed, regexp.MustCompile("(?i)"+p))
	}
	for _, category := range rules.Categories {
		for _, p := range category.Patterns {
			compiled = append(compiled, compiledRule{
				category: category.Name,
				pattern:  regexp.MustCompile("(?i)" + p),
				message:  category.Message,
			})
		}
	}
}

// Check screens a task for harmful content. It returns nil when the task is
// acceptable and a *Error tagged with the matched category otherwise.
func Check(task string) error {
	for _, allow := range allowed {
		if allow.MatchString(task) {
			return nil
		}
	}

	for _, rule := range compiled {
		if rule.pattern.MatchString(task) {
			return &Error{Category: rule.category, Message: rule.message}
		}
	}
	return nil
}
