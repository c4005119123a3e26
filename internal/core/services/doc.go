// Package services implements the driving port interfaces.
// Services load state through the driven ports, hand immutable snapshots
// to the analysis engine and persist what it returns.
package services
