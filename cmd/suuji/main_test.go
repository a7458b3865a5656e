package main

import (
	"reflect"
	"testing"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/suuji/internal/model"
)

func validConfig() model.Config {
	return model.Config{
		CatalogStart: 0,
		CatalogEnd:   100,
		PageSize:     10,
		Pool:         "default",
		MaxDigits:    5,
		Speech:       model.SpeechConfig{Rate: 1},
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.Config)
		ok     bool
	}{
		{name: "valid", mutate: func(*model.Config) {}, ok: true},
		{name: "negative start", mutate: func(c *model.Config) { c.CatalogStart = -1 }},
		{name: "end before start", mutate: func(c *model.Config) { c.CatalogEnd = 0 }},
		{name: "end past domain", mutate: func(c *model.Config) { c.CatalogEnd = 100_000_001 }},
		{name: "zero page size", mutate: func(c *model.Config) { c.PageSize = 0 }},
		{name: "too many digits", mutate: func(c *model.Config) { c.MaxDigits = 9 }},
		{name: "blank pool", mutate: func(c *model.Config) { c.Pool = " " }},
		{name: "zero rate", mutate: func(c *model.Config) { c.Speech.Rate = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := validateConfig(cfg)
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok && err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestReadColumns(t *testing.T) {
	cols, err := readColumns("both")
	if err != nil {
		t.Fatalf("readColumns failed: %v", err)
	}
	if !reflect.DeepEqual(cols, []model.Alphabet{model.Kana, model.Romaji}) {
		t.Fatalf("unexpected columns %v", cols)
	}
	cols, err = readColumns("romaji")
	if err != nil {
		t.Fatalf("readColumns failed: %v", err)
	}
	if !reflect.DeepEqual(cols, []model.Alphabet{model.Romaji}) {
		t.Fatalf("unexpected columns %v", cols)
	}
	if _, err := readColumns("katakana"); err == nil {
		t.Fatalf("expected error for unknown alphabet")
	}
}

func TestApplyConfigRespectsFlags(t *testing.T) {
	var size int
	cmd := &cobra.Command{Use: "x"}
	cmd.Flags().IntVar(&size, "size", 10, "")

	fromFile := 25
	applyIntConfig(cmd, "size", &size, &fromFile)
	if size != 25 {
		t.Fatalf("expected config value 25, got %d", size)
	}

	if err := cmd.Flags().Set("size", "7"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	applyIntConfig(cmd, "size", &size, &fromFile)
	if size != 7 {
		t.Fatalf("expected flag value 7 to win, got %d", size)
	}

	applyIntConfig(cmd, "size", &size, nil)
	if size != 7 {
		t.Fatalf("nil config value changed target to %d", size)
	}
}

func TestApplyConfigInheritedFlag(t *testing.T) {
	var mute bool
	root := &cobra.Command{Use: "root"}
	root.PersistentFlags().BoolVar(&mute, "mute", false, "")
	child := &cobra.Command{Use: "child", Run: func(*cobra.Command, []string) {}}
	root.AddCommand(child)

	if err := root.PersistentFlags().Set("mute", "true"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	off := false
	applyBoolConfig(child, "mute", &mute, &off)
	if !mute {
		t.Fatalf("expected --mute on the parent to win over config")
	}
}
