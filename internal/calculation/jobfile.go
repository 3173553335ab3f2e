package calculation

import (
	"io"
	"strconv"
	"strings"
	"text/template"

	"github.com/pkg/errors"
)

var jobTemplate = template.Must(template.New("job").Parse(`#!/bin/bash
{{- with .JobName }}
#PBS -N {{ . }}
{{- end }}
{{- if .Nodes }}
#PBS -l nodes={{ .Nodes }}{{ with .PPN }}:ppn={{ . }}{{ end }}
{{- end }}
{{- with .Walltime }}
#PBS -l walltime={{ . }}
{{- end }}
{{- with .Memory }}
#PBS -l mem={{ . }}
{{- end }}
{{- with .Queue }}
#PBS -q {{ . }}
{{- end }}
{{- with .Stderr }}
#PBS -e {{ . }}
{{- end }}
{{- range .LinesBefore }}
{{ . }}
{{- end }}
{{- range .Modules }}
module load {{ . }}
{{- end }}

cd {{ .WorkDir }}
{{ .Command }} < {{ .FilesFile }} > {{ .Log }} 2> {{ .Stderr }}
{{- range .LinesAfter }}
{{ . }}
{{- end }}
`))

// JobFile is the shell script used to run or submit a calculation.
type JobFile struct {
	JobName     string
	Nodes       string
	PPN         int
	MPIRunNP    int
	Walltime    string
	Memory      string
	Queue       string
	MPIRun      string
	Modules     []string
	LinesBefore []string
	LinesAfter  []string

	WorkDir    string
	Executable string
	FilesFile  string
	Log        string
	Stderr     string
}

func newJobFile() *JobFile {
	return &JobFile{MPIRun: "mpirun"}
}

func (j *JobFile) SetJobName(name string)        { j.JobName = name }
func (j *JobFile) SetNodes(nodes string)         { j.Nodes = nodes }
func (j *JobFile) SetPPN(ppn int)                { j.PPN = ppn }
func (j *JobFile) SetMPIRunNP(np int)            { j.MPIRunNP = np }
func (j *JobFile) SetWalltime(walltime string)   { j.Walltime = walltime }
func (j *JobFile) SetMemory(memory string)       { j.Memory = memory }
func (j *JobFile) SetQueue(queue string)         { j.Queue = queue }
func (j *JobFile) SetMPIRun(command string)      { j.MPIRun = command }
func (j *JobFile) SetModules(modules []string)   { j.Modules = modules }
func (j *JobFile) SetLinesBefore(lines []string) { j.LinesBefore = lines }
func (j *JobFile) SetLinesAfter(lines []string)  { j.LinesAfter = lines }

// CommandLine is the executable, prefixed by the MPI launcher when more than one process is requested.
func (j *JobFile) CommandLine() []string {
	if j.MPIRunNP > 1 && j.MPIRun != "" {
		return []string{j.MPIRun, "-np", strconv.Itoa(j.MPIRunNP), j.Executable}
	}
	return []string{j.Executable}
}

func (j *JobFile) Command() string {
	return strings.Join(j.CommandLine(), " ")
}

func (j *JobFile) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	if err := jobTemplate.Execute(cw, j); err != nil {
		return cw.n, errors.Wrap(err, "error rendering job file")
	}
	return cw.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
