package domain

// RecognitionEvent é uma detecção emitida pelo backend de reconhecimento.
// Events are ordered by arrival on the push channel; Timestamp is display
// metadata and is never used to re-sort the feed.
type RecognitionEvent struct {
	Name          string  `json:"name"`
	Timestamp     float64 `json:"timestamp"`
	FusionScore   float64 `json:"fusion_score"`
	LivenessScore float64 `json:"liveness_score"`
}
