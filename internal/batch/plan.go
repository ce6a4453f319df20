package batch

import (
	"path/filepath"
	"strings"

	"github.com/specialistvlad/nifconv/internal/docio"
	"github.com/specialistvlad/nifconv/internal/fsutil"
	"github.com/specialistvlad/nifconv/internal/lod"
)

// ConvertedTag is inserted into output names written next to their input.
const ConvertedTag = ".converted"

// Job is one document to convert.
type Job struct {
	Source string
	// Rel is Source relative to the input root, used in reports.
	Rel    string
	Output string
	File   lod.Props
	// DetectErr explains an Invalid file type.
	DetectErr error
}

// Plan maps discovered source files to jobs. LOD files are written under
// their terrain path; standard files keep their position relative to
// inputRoot. An empty outputRoot writes next to each input, LOD files
// under their terrain name and standard files with ConvertedTag inserted
// before the extension.
func Plan(inputRoot, outputRoot string, files []string, compress bool) []Job {
	jobs := make([]Job, 0, len(files))
	for _, src := range files {
		props, err := lod.Detect(src)
		job := Job{Source: src, Rel: fsutil.Rel(inputRoot, src), File: props, DetectErr: err}

		switch {
		case props.Output != "" && outputRoot != "":
			job.Output = filepath.Join(outputRoot, filepath.FromSlash(props.Output))
		case props.Output != "":
			job.Output = filepath.Join(filepath.Dir(src), filepath.Base(props.Output))
		case outputRoot != "":
			job.Output = filepath.Join(outputRoot, job.Rel)
		default:
			job.Output = convertedName(src)
		}
		if compress && !docio.IsCompressed(job.Output) {
			job.Output += docio.CompressedSuffix
		}
		jobs = append(jobs, job)
	}
	return jobs
}

// convertedName turns dir/a.nif.yaml into dir/a.converted.nif.yaml.
func convertedName(src string) string {
	dir, name := filepath.Split(src)
	base, suffix := lod.LogicalName(name)
	ext := filepath.Ext(base)
	return filepath.Join(dir, strings.TrimSuffix(base, ext)+ConvertedTag+ext+suffix)
}
