// Package internaldefs holds the exported metric names, help strings and histogram
// bucket bounds so every exporter renders identical series.
package internaldefs
