package launcher

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/armadaproject/abilaunch/internal/approver"
	"github.com/armadaproject/abilaunch/internal/common/launcherrors"
)

const (
	NodesOption    = "nodes"
	PPNOption      = "ppn"
	MPIRunNPOption = "mpirun_np"
	JobNameOption  = "jobname"
)

type optionSetter func(j JobFile, value interface{}) error

var jobOptionSetters = map[string]optionSetter{
	JobNameOption:  stringOption(JobFile.SetJobName),
	NodesOption:    stringOption(JobFile.SetNodes),
	PPNOption:      intOption(JobFile.SetPPN),
	MPIRunNPOption: intOption(JobFile.SetMPIRunNP),
	"walltime":     stringOption(JobFile.SetWalltime),
	"memory":       stringOption(JobFile.SetMemory),
	"queue":        stringOption(JobFile.SetQueue),
	"mpirun":       stringOption(JobFile.SetMPIRun),
	"modules":      stringsOption(JobFile.SetModules),
	"lines_before": stringsOption(JobFile.SetLinesBefore),
	"lines_after":  stringsOption(JobFile.SetLinesAfter),
}

// JobOptionNames returns the names of all supported job options, sorted.
func JobOptionNames() []string {
	names := maps.Keys(jobOptionSetters)
	slices.Sort(names)
	return names
}

// ApplyJobOptions passes every option to the matching setter of the job file.
// Options are applied in name order; an unknown option or a value of the wrong kind is an error.
func ApplyJobOptions(j JobFile, options map[string]interface{}) error {
	names := maps.Keys(options)
	slices.Sort(names)
	for _, name := range names {
		setter, ok := jobOptionSetters[name]
		if !ok {
			return errors.WithStack(&launcherrors.ErrInvalidArgument{
				Name:    name,
				Value:   options[name],
				Message: "unknown job option, expected one of " + strings.Join(JobOptionNames(), ", "),
			})
		}
		if err := setter(j, options[name]); err != nil {
			return errors.WithStack(&launcherrors.ErrInvalidArgument{
				Name:    name,
				Value:   options[name],
				Message: err.Error(),
			})
		}
	}
	return nil
}

// parallelDescriptor builds the approver's view of the parallel layout from the job options.
// It returns nil if none of the relevant options is set.
func parallelDescriptor(options map[string]interface{}) (*approver.ParallelDescriptor, error) {
	nodes := ""
	if value, ok := options[NodesOption]; ok && value != nil {
		s, err := cast.ToStringE(value)
		if err != nil {
			return nil, errors.WithStack(&launcherrors.ErrInvalidArgument{Name: NodesOption, Value: value, Message: err.Error()})
		}
		nodes = s
	}
	ppn, err := optionalInt(options, PPNOption)
	if err != nil {
		return nil, err
	}
	mpi, err := optionalInt(options, MPIRunNPOption)
	if err != nil {
		return nil, err
	}
	return approver.NewParallelDescriptor(nodes, ppn, mpi), nil
}

func optionalInt(options map[string]interface{}, name string) (*int, error) {
	value, ok := options[name]
	if !ok || value == nil {
		return nil, nil
	}
	i, err := cast.ToIntE(value)
	if err != nil {
		return nil, errors.WithStack(&launcherrors.ErrInvalidArgument{Name: name, Value: value, Message: "must be an integer"})
	}
	return &i, nil
}

func stringOption(set func(JobFile, string)) optionSetter {
	return func(j JobFile, value interface{}) error {
		s, err := cast.ToStringE(value)
		if err != nil {
			return err
		}
		set(j, s)
		return nil
	}
}

func intOption(set func(JobFile, int)) optionSetter {
	return func(j JobFile, value interface{}) error {
		i, err := cast.ToIntE(value)
		if err != nil {
			return err
		}
		set(j, i)
		return nil
	}
}

// stringsOption accepts a single string as a one-element list.
func stringsOption(set func(JobFile, []string)) optionSetter {
	return func(j JobFile, value interface{}) error {
		if s, ok := value.(string); ok {
			set(j, []string{s})
			return nil
		}
		lines, err := cast.ToStringSliceE(value)
		if err != nil {
			return err
		}
		set(j, lines)
		return nil
	}
}
