package tracing

import (
	"strings"
	"testing"
)

func TestCreateSampler(t *testing.T) {
	tests := []struct {
		name     string
		strategy string
		ratio    float64
		wantErr  bool
	}{
		{name: "always sampler", strategy: SamplerAlways},
		{name: "never sampler", strategy: SamplerNever},
		{name: "ratio sampler at 0", strategy: SamplerRatio, ratio: 0.0},
		{name: "ratio sampler at 0.5", strategy: SamplerRatio, ratio: 0.5},
		{name: "ratio sampler at 1", strategy: SamplerRatio, ratio: 1.0},
		{name: "negative ratio rejected", strategy: SamplerRatio, ratio: -0.1, wantErr: true},
		{name: "ratio above 1 rejected", strategy: SamplerRatio, ratio: 1.5, wantErr: true},
		{name: "unknown strategy rejected", strategy: "unknown", ratio: 0.5, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sampler, err := createSampler(tt.strategy, tt.ratio)
			if (err != nil) != tt.wantErr {
				t.Fatalf("createSampler() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && sampler == nil {
				t.Error("createSampler() returned nil sampler without error")
			}
		})
	}
}

func TestCreateSampler_UnknownStrategyNamesIt(t *testing.T) {
	_, err := createSampler("head-based", 0.5)
	if err == nil {
		t.Fatal("expected error for unknown strategy")
	}
	if !strings.Contains(err.Error(), "head-based") {
		t.Errorf("error should name the rejected strategy, got %q", err)
	}
}

func TestValidateSamplingConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  SamplingConfig
		wantErr bool
	}{
		{name: "valid always", config: SamplingConfig{Strategy: SamplerAlways}},
		{name: "valid never", config: SamplingConfig{Strategy: SamplerNever}},
		{name: "valid ratio", config: SamplingConfig{Strategy: SamplerRatio, Ratio: 0.1}},
		{name: "ratio edge 0", config: SamplingConfig{Strategy: SamplerRatio, Ratio: 0.0}},
		{name: "ratio edge 1", config: SamplingConfig{Strategy: SamplerRatio, Ratio: 1.0}},
		{name: "invalid strategy", config: SamplingConfig{Strategy: "invalid", Ratio: 0.5}, wantErr: true},
		{name: "negative ratio", config: SamplingConfig{Strategy: SamplerRatio, Ratio: -0.1}, wantErr: true},
		{name: "ratio too high", config: SamplingConfig{Strategy: SamplerRatio, Ratio: 1.5}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSamplingConfig(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSamplingConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSamplerConstants(t *testing.T) {
	// The constants are config-file values; renaming them breaks deployed
	// configs.
	if SamplerAlways != "always" || SamplerNever != "never" || SamplerRatio != "ratio" {
		t.Errorf("sampler constants changed: %q %q %q", SamplerAlways, SamplerNever, SamplerRatio)
	}
}
