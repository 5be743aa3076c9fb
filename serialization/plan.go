package serialization

import (
	"encoding/json"

	"github.com/Masterminds/semver"
	"github.com/pkg/errors"

	"github.com/cube2222/octodist/logical"
)

// PlanFormatVersion is bumped whenever the encoding of logical plans changes.
// Datanodes accept any plan with the same major version.
const PlanFormatVersion = "1.0.0"

var supportedPlanVersions = func() *semver.Constraints {
	constraint, err := semver.NewConstraint("^1.0.0")
	if err != nil {
		panic(err)
	}
	return constraint
}()

var ErrUnsupportedVersion = errors.New("unsupported plan format version")

type encodedPlan struct {
	Version string       `json:"version"`
	Plan    logical.Node `json:"plan"`
}

// EncodePlan serializes a logical plan so that it can be sent to datanodes.
func EncodePlan(node logical.Node) ([]byte, error) {
	if err := node.Validate(); err != nil {
		return nil, errors.Wrap(err, "couldn't validate plan")
	}
	data, err := json.Marshal(encodedPlan{
		Version: PlanFormatVersion,
		Plan:    node,
	})
	if err != nil {
		return nil, errors.Wrap(err, "couldn't marshal plan")
	}
	return data, nil
}

func DecodePlan(data []byte) (logical.Node, error) {
	var plan encodedPlan
	if err := json.Unmarshal(data, &plan); err != nil {
		return logical.Node{}, errors.Wrap(err, "couldn't unmarshal plan")
	}

	version, err := semver.NewVersion(plan.Version)
	if err != nil {
		return logical.Node{}, errors.Wrapf(ErrUnsupportedVersion, "invalid version '%s': %s", plan.Version, err)
	}
	if !supportedPlanVersions.Check(version) {
		return logical.Node{}, errors.Wrapf(ErrUnsupportedVersion, "%s", version)
	}

	if err := plan.Plan.Validate(); err != nil {
		return logical.Node{}, errors.Wrap(err, "couldn't validate plan")
	}
	return plan.Plan, nil
}
