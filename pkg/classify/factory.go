package classify

import "log/slog"

// BuildClassifiers creates one classifier per upstream configuration. A
// single invalid entry fails the whole build: misconfiguration should
// surface at startup, not degrade silently at request time.
func BuildClassifiers(configs []UpstreamConfig) ([]Classifier, error) {
	classifiers := make([]Classifier, 0, len(configs))

	for _, cfg := range configs {
		slog.Debug("creating upstream classifier",
			"upstream", cfg.Name,
			"endpoint", cfg.Endpoint,
			"payload_style", cfg.PayloadStyle,
			"extraction", cfg.Extraction,
		)

		classifier, err := NewHTTPClassifier(cfg)
		if err != nil {
			for _, c := range classifiers {
				c.Close()
			}
			return nil, err
		}
		classifiers = append(classifiers, classifier)
	}
	return classifiers, nil
}
