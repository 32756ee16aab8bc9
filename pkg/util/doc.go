// Package util provides small helpers shared across specdocs packages.
//
//   - TruncateBody caps request bodies for safe logging
package util
