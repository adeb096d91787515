package pal

import "fmt"

// RawProfile is the shape parsed out of an LLM reply. Every field is
// optional; normalization fills the gaps.
type RawProfile struct {
	MBTI        *string    `json:"mbti"`
	Traits      *RawTraits `json:"traits"`
	Backstory   *string    `json:"backstory"`
	Description *string    `json:"personality_description"`
}

// RawTraits mirrors Traits with optional, possibly fractional values.
type RawTraits struct {
	Extraversion      *float64 `json:"extraversion"`
	Agreeableness     *float64 `json:"agreeableness"`
	Openness          *float64 `json:"openness"`
	Conscientiousness *float64 `json:"conscientiousness"`
	Neuroticism       *float64 `json:"neuroticism"`
}

// DefaultProfile is the deterministic fallback used whenever generation is
// unavailable or fails. Values are fixed.
func DefaultProfile(name string) GeneratedProfile {
	return GeneratedProfile{
		MBTI: "ENFP",
		Traits: Traits{
			Extraversion:      60,
			Agreeableness:     70,
			Openness:          65,
			Conscientiousness: 45,
			Neuroticism:       35,
		},
		Backstory:   fmt.Sprintf("%s has been waiting for the perfect companion to share adventures with.", name),
		Description: fmt.Sprintf("%s is a cheerful and affectionate friend who loves making new memories.", name),
	}
}

// NormalizeProfile fills absent fields with per-field defaults. Present
// values pass through as-is, including out-of-range trait scores; only
// missing keys are defaulted.
func NormalizeProfile(name string, raw RawProfile) GeneratedProfile {
	p := GeneratedProfile{
		MBTI: "ENFP",
		Traits: Traits{
			Extraversion:      50,
			Agreeableness:     50,
			Openness:          50,
			Conscientiousness: 50,
			Neuroticism:       50,
		},
		Backstory:   fmt.Sprintf("%s is a beloved toy with many adventures ahead.", name),
		Description: fmt.Sprintf("%s is friendly, playful, and curious about the world.", name),
	}
	if raw.MBTI != nil && *raw.MBTI != "" {
		p.MBTI = *raw.MBTI
	}
	if t := raw.Traits; t != nil {
		if t.Extraversion != nil {
			p.Traits.Extraversion = int(*t.Extraversion)
		}
		if t.Agreeableness != nil {
			p.Traits.Agreeableness = int(*t.Agreeableness)
		}
		if t.Openness != nil {
			p.Traits.Openness = int(*t.Openness)
		}
		if t.Conscientiousness != nil {
			p.Traits.Conscientiousness = int(*t.Conscientiousness)
		}
		if t.Neuroticism != nil {
			p.Traits.Neuroticism = int(*t.Neuroticism)
		}
	}
	if raw.Backstory != nil && *raw.Backstory != "" {
		p.Backstory = *raw.Backstory
	}
	if raw.Description != nil && *raw.Description != "" {
		p.Description = *raw.Description
	}
	return p
}

const systemPromptTemplate = `You are %s, a %s personality type toy.

Your traits:
- Extraversion: %d
- Agreeableness: %d
- Openness: %d
- Conscientiousness: %d
- Neuroticism: %d

Backstory: %s

You speak in a way that reflects your personality. Keep responses concise and conversational (1-3 sentences typically). You are affectionate, playful, and loyal to your owner.`

// SystemPrompt renders the creation-time chat prompt for a pal. Built once
// when the pal is created and stored alongside it.
func SystemPrompt(name string, p GeneratedProfile) string {
	return fmt.Sprintf(systemPromptTemplate,
		name, p.MBTI,
		p.Traits.Extraversion,
		p.Traits.Agreeableness,
		p.Traits.Openness,
		p.Traits.Conscientiousness,
		p.Traits.Neuroticism,
		p.Backstory,
	)
}
