package feed

import (
	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
)

// Recent returns the first n events of a snapshot, capped at its length.
func Recent(events []domain.RecognitionEvent, n int) []domain.RecognitionEvent {
	if n < 0 {
		n = 0
	}
	if n > len(events) {
		n = len(events)
	}
	out := make([]domain.RecognitionEvent, n)
	copy(out, events[:n])
	return out
}

// LatestPerSubject deduplicates a newest-first snapshot down to one event
// per subject name, keeping each subject's first (most recent) occurrence
// and preserving the order of first appearance. Single linear scan.
func LatestPerSubject(events []domain.RecognitionEvent) []domain.RecognitionEvent {
	seen := make(map[string]struct{}, len(events))
	out := make([]domain.RecognitionEvent, 0, len(events))
	for _, e := range events {
		if _, ok := seen[e.Name]; ok {
			continue
		}
		seen[e.Name] = struct{}{}
		out = append(out, e)
	}
	return out
}

// Chronological returns the full log view in buffer order (newest first).
func Chronological(events []domain.RecognitionEvent) []domain.RecognitionEvent {
	out := make([]domain.RecognitionEvent, len(events))
	copy(out, events)
	return out
}

// FilterBySubject keeps only events for the given subject name, preserving
// order. An empty name matches everything.
func FilterBySubject(events []domain.RecognitionEvent, name string) []domain.RecognitionEvent {
	if name == "" {
		return Chronological(events)
	}
	out := make([]domain.RecognitionEvent, 0, len(events))
	for _, e := range events {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}
