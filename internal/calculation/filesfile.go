package calculation

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/armadaproject/abilaunch/internal/common/util"
)

const (
	inputDataDir  = "input_data"
	outputDataDir = "out_data"
	tmpDataDir    = "tmp_data"

	// Index of the first pseudopotential in a files file; the lines before it are the input, output
	// and the three data prefixes.
	firstPseudoLine = 5
)

// Files is the content of an ABINIT files file.
type Files struct {
	Input        string
	Output       string
	InputPrefix  string
	OutputPrefix string
	TmpPrefix    string
	Pseudos      []string
}

func filesFor(name string, pseudoDir string, pseudos []string) Files {
	paths := make([]string, 0, len(pseudos))
	for _, pseudo := range pseudos {
		paths = append(paths, filepath.Join(pseudoDir, pseudo))
	}
	return Files{
		Input:        name + ".in",
		Output:       name + ".out",
		InputPrefix:  filepath.Join(inputDataDir, "idat_"+name),
		OutputPrefix: filepath.Join(outputDataDir, "odat_"+name),
		TmpPrefix:    filepath.Join(tmpDataDir, "tmp_"+name),
		Pseudos:      paths,
	}
}

func (f Files) WriteTo(w io.Writer) (int64, error) {
	lines := append([]string{f.Input, f.Output, f.InputPrefix, f.OutputPrefix, f.TmpPrefix}, f.Pseudos...)
	n, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return int64(n), errors.WithStack(err)
}

// ReadFiles reads a files file. Blank lines are ignored and every line is trimmed; the first line is
// the input file and lines from the sixth on are the pseudopotentials.
func ReadFiles(path string) (Files, error) {
	f, err := os.Open(path)
	if err != nil {
		return Files{}, errors.WithStack(err)
	}
	defer util.CloseResource(path, f)

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return Files{}, errors.Wrapf(err, "error reading %s", path)
	}
	if len(lines) == 0 {
		return Files{}, errors.Errorf("files file %s is empty", path)
	}

	files := Files{Input: lines[0]}
	optional := []*string{&files.Output, &files.InputPrefix, &files.OutputPrefix, &files.TmpPrefix}
	for i, field := range optional {
		if i+1 < len(lines) {
			*field = lines[i+1]
		}
	}
	if len(lines) > firstPseudoLine {
		files.Pseudos = lines[firstPseudoLine:]
	}
	return files, nil
}
