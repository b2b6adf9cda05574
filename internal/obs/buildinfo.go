package obs

import "github.com/prometheus/client_golang/prometheus"

// RegisterBuildInfo publishes memberauth_build_info{version,commit} 1 on reg.
func RegisterBuildInfo(reg prometheus.Registerer, version, commit string) {
	buildInfo := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "memberauth",
			Name:      "build_info",
			Help:      "memberauth build information.",
		},
		[]string{"version", "commit"},
	)
	reg.MustRegister(buildInfo)
	buildInfo.WithLabelValues(version, commit).Set(1)
}
