package library

import (
	"sort"
	"strings"
)

// NormalizeTags trims and lower-cases tags and drops empty ones. Order and
// duplicates are kept. The result is never nil.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Match reports whether p passes every non-empty field of f.
func (f Filter) Match(p Prompt) bool {
	if f.FolderID != "" && (p.FolderID == nil || *p.FolderID != f.FolderID) {
		return false
	}
	if f.Tag != "" && !hasTag(p.Tags, strings.ToLower(strings.TrimSpace(f.Tag))) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if !strings.Contains(strings.ToLower(p.Title), q) &&
			!strings.Contains(strings.ToLower(p.Body), q) &&
			!hasTagContaining(p.Tags, q) {
			return false
		}
	}
	return true
}

// Apply returns the prompts matching f, in their original order.
func (f Filter) Apply(prompts []Prompt) []Prompt {
	out := make([]Prompt, 0, len(prompts))
	for _, p := range prompts {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

// CountTags returns each distinct tag with the number of prompts using it,
// sorted by tag. A prompt listing a tag twice counts once.
func CountTags(prompts []Prompt) []TagCount {
	counts := make(map[string]int)
	for _, p := range prompts {
		seen := make(map[string]bool, len(p.Tags))
		for _, t := range p.Tags {
			if seen[t] {
				continue
			}
			seen[t] = true
			counts[t]++
		}
	}
	out := make([]TagCount, 0, len(counts))
	for tag, n := range counts {
		out = append(out, TagCount{Tag: tag, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tag < out[j].Tag })
	return out
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

func hasTagContaining(tags []string, q string) bool {
	for _, t := range tags {
		if strings.Contains(t, q) {
			return true
		}
	}
	return false
}
