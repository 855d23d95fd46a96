// Package analysis provides post-run tools for flock observables.
//
//   - [PowerSpectrum]: spectrum of a per-frame metric series
//   - [DominantFrequency]: strongest non-DC oscillation of a series
//   - [Divergence]: growth rate of a tiny perturbation between two flocks
//   - [ParameterScan]: steady values of a probe while one parameter sweeps
//   - [NewPortrait]: two metric series plotted against each other
//
// # Sensitivity
//
// A positive divergence rate means nearby initial conditions separate:
//
//	rate := analysis.Divergence(flock.Serial{}, cfg, fields, 1e-4, 600, 1.0/60)
//	if rate > 0 {
//	    // trajectories are sensitive to initial conditions
//	}
package analysis
