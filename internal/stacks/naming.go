// Where: internal/stacks/naming.go
// What: Deterministic resource naming from project/stage/service.
// Why: Keep every environment's resources isolated by construction.
package stacks

import "fmt"

// Naming derives every physical name from the project, stage, and service
// tokens. Two distinct stages can never produce colliding names because the
// stage is embedded in every prefix.
type Naming struct {
	Project string
	Stage   string
	Service string
}

func (n Naming) prefix() string {
	return fmt.Sprintf("%s-%s-%s", n.Project, n.Stage, n.Service)
}

// StackName names the stack holding this service's resources.
func (n Naming) StackName() string {
	return n.prefix()
}

// TableName names the service's DynamoDB table.
func (n Naming) TableName() string {
	return n.prefix() + "-events"
}

// RoleName names the function's execution role.
func (n Naming) RoleName() string {
	return n.prefix() + "-role"
}

// FunctionName names the Lambda function.
func (n Naming) FunctionName() string {
	return n.prefix()
}

// LogGroupName names the function's log group, following the Lambda
// convention the service expects.
func (n Naming) LogGroupName() string {
	return "/aws/lambda/" + n.FunctionName()
}

// APIName names the HTTP API.
func (n Naming) APIName() string {
	return n.prefix() + "-http"
}

// StateFileName names the stack's Terraform state file.
func (n Naming) StateFileName() string {
	return n.StackName() + ".tfstate"
}
