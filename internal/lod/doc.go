// Package lod detects level-of-detail files from their paths and
// restructures converted LOD documents once their whole graph exists.
package lod
