package caddie

// ClassifyReadiness maps a calibration tier to a readiness label. A manual
// override is trusted as ready; the generic table never is.
func ClassifyReadiness(source DistanceSource, sampleCount, minSamples int) ClubReadinessLevel {
	switch source {
	case SourceManual:
		return ReadinessReady
	case SourceDefault:
		return ReadinessUnready
	case SourcePartialStats:
		return ReadinessLearning
	case SourceAutoCalibrated:
		return ReadinessReady
	}
	return ReadinessUnready
}
