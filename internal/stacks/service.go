// Where: internal/stacks/service.go
// What: Declares one service's resource graph into a stack.
// Why: One builder covers both the upstream and the dependent variant.
package stacks

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/julien-capellari/sls-cdktf-stack/internal/config"
	"github.com/julien-capellari/sls-cdktf-stack/internal/synth"
	"github.com/julien-capellari/sls-cdktf-stack/internal/tfjson"
)

const (
	awsProviderSource  = "hashicorp/aws"
	awsProviderVersion = "~> 5.0"

	logRetentionDays = 14

	// OutputAPIURL is the output every service stack exports: the public
	// invoke URL of its HTTP API. Dependent stacks consume it as their
	// upstream URL.
	OutputAPIURL = "api_url"

	envTableName   = "TABLE_NAME"
	envStage       = "STAGE"
	envUpstreamURL = "UPSTREAM_URL"

	upstreamDataName = "upstream"
)

// Logical names within a service stack. Physical names carry the stage; the
// logical addresses stay fixed so emitted documents diff cleanly.
const (
	resTable          = "events"
	resRole           = "fn"
	resRolePolicy     = "table_access"
	resRoleAttachment = "logs"
	resLogGroup       = "fn"
	resFunction       = "fn"
	resAPI            = "api"
	resIntegration    = "fn"
	resRoute          = "default"
	resStage          = "default"
	resPermission     = "apigw"
)

// BuildRequest parameterizes one service stack build.
type BuildRequest struct {
	Naming  Naming
	Region  string
	Profile string
	Service config.ServiceSpec

	// BackendStatePath is the stack's own state location, relative to its
	// emitted directory.
	BackendStatePath string

	// UpstreamStatePath points at the upstream stack's state when the
	// service declares an upstream; empty otherwise.
	UpstreamStatePath string
}

// BuildService declares the full resource graph for one service: table,
// role, log group, function, permission, HTTP API, integration, route, and
// stage, plus the api_url output. The packaged bundle is fingerprinted and
// staged before the function resource is declared.
func BuildService(s *synth.Stack, req BuildRequest) error {
	if strings.TrimSpace(req.Region) == "" {
		return fmt.Errorf("stack %s: region is required", s.Name())
	}

	doc := s.Document()
	doc.RequireProvider("aws", tfjson.RequiredProvider{
		Source:  awsProviderSource,
		Version: awsProviderVersion,
	})
	doc.SetBackend("local", map[string]any{"path": req.BackendStatePath})

	provider := map[string]any{"region": req.Region}
	if req.Profile != "" {
		provider["profile"] = req.Profile
	}
	doc.AddProvider("aws", provider)

	if err := addTable(doc, req.Naming); err != nil {
		return err
	}
	if err := addRole(doc, req.Naming); err != nil {
		return err
	}
	if err := doc.AddResource("aws_cloudwatch_log_group", resLogGroup, map[string]any{
		"name":              req.Naming.LogGroupName(),
		"retention_in_days": logRetentionDays,
	}); err != nil {
		return err
	}

	upstreamURL, err := addUpstream(doc, req.UpstreamStatePath)
	if err != nil {
		return err
	}

	// The function resource needs the bundle's content hash; a missing or
	// unreadable bundle stops the build here, before the resource exists.
	asset, err := s.StageAsset(req.Service.Artifact)
	if err != nil {
		return err
	}
	if err := addFunction(doc, req, asset.Path, asset.Digest.Base64(), upstreamURL); err != nil {
		return err
	}

	return addAPI(doc, req.Naming)
}

func addTable(doc *tfjson.Document, naming Naming) error {
	return doc.AddResource("aws_dynamodb_table", resTable, map[string]any{
		"name":         naming.TableName(),
		"billing_mode": "PAY_PER_REQUEST",
		"hash_key":     "id",
		"attribute": []map[string]any{
			{"name": "id", "type": "S"},
		},
	})
}

func addRole(doc *tfjson.Document, naming Naming) error {
	assumePolicy, err := policyJSON(map[string]any{
		"Version": "2012-10-17",
		"Statement": []map[string]any{
			{
				"Effect":    "Allow",
				"Action":    "sts:AssumeRole",
				"Principal": map[string]any{"Service": "lambda.amazonaws.com"},
			},
		},
	})
	if err != nil {
		return err
	}
	if err := doc.AddResource("aws_iam_role", resRole, map[string]any{
		"name":               naming.RoleName(),
		"assume_role_policy": assumePolicy,
	}); err != nil {
		return err
	}

	tablePolicy, err := policyJSON(map[string]any{
		"Version": "2012-10-17",
		"Statement": []map[string]any{
			{
				"Effect": "Allow",
				"Action": []string{
					"dynamodb:GetItem",
					"dynamodb:PutItem",
					"dynamodb:UpdateItem",
					"dynamodb:DeleteItem",
					"dynamodb:Query",
				},
				"Resource": tfjson.ResourceAttr("aws_dynamodb_table", resTable, "arn"),
			},
		},
	})
	if err != nil {
		return err
	}
	if err := doc.AddResource("aws_iam_role_policy", resRolePolicy, map[string]any{
		"name":   naming.RoleName() + "-table",
		"role":   tfjson.ResourceAttr("aws_iam_role", resRole, "id"),
		"policy": tablePolicy,
	}); err != nil {
		return err
	}

	return doc.AddResource("aws_iam_role_policy_attachment", resRoleAttachment, map[string]any{
		"role":       tfjson.ResourceAttr("aws_iam_role", resRole, "name"),
		"policy_arn": "arn:aws:iam::aws:policy/service-role/AWSLambdaBasicExecutionRole",
	})
}

// addUpstream wires the terraform_remote_state data source when an upstream
// state path is set, and returns the expression for the upstream URL. The
// engine resolves the value at apply time; construction never blocks on it.
func addUpstream(doc *tfjson.Document, statePath string) (string, error) {
	if statePath == "" {
		return "", nil
	}
	if err := doc.AddData("terraform_remote_state", upstreamDataName, map[string]any{
		"backend": "local",
		"config":  map[string]any{"path": statePath},
	}); err != nil {
		return "", err
	}
	return tfjson.RemoteStateOutput(upstreamDataName, OutputAPIURL), nil
}

func addFunction(doc *tfjson.Document, req BuildRequest, assetPath, sourceHash, upstreamURL string) error {
	env := make(map[string]any, len(req.Service.Environment)+3)
	for k, v := range req.Service.Environment {
		env[k] = v
	}
	// Reserved variables win over user-declared ones.
	env[envTableName] = tfjson.ResourceAttr("aws_dynamodb_table", resTable, "name")
	env[envStage] = req.Naming.Stage
	if upstreamURL != "" {
		env[envUpstreamURL] = upstreamURL
	}

	if err := doc.AddResource("aws_lambda_function", resFunction, map[string]any{
		"function_name":    req.Naming.FunctionName(),
		"role":             tfjson.ResourceAttr("aws_iam_role", resRole, "arn"),
		"handler":          req.Service.Handler,
		"runtime":          req.Service.Runtime,
		"filename":         assetPath,
		"source_code_hash": sourceHash,
		"memory_size":      req.Service.MemorySize,
		"timeout":          req.Service.Timeout,
		"environment":      map[string]any{"variables": env},
		"depends_on": []string{
			"aws_cloudwatch_log_group." + resLogGroup,
			"aws_iam_role_policy_attachment." + resRoleAttachment,
		},
	}); err != nil {
		return err
	}

	return doc.AddResource("aws_lambda_permission", resPermission, map[string]any{
		"statement_id":  "AllowAPIGatewayInvoke",
		"action":        "lambda:InvokeFunction",
		"function_name": tfjson.ResourceAttr("aws_lambda_function", resFunction, "function_name"),
		"principal":     "apigateway.amazonaws.com",
		"source_arn":    tfjson.ResourceAttr("aws_apigatewayv2_api", resAPI, "execution_arn") + "/*/*",
	})
}

func addAPI(doc *tfjson.Document, naming Naming) error {
	if err := doc.AddResource("aws_apigatewayv2_api", resAPI, map[string]any{
		"name":          naming.APIName(),
		"protocol_type": "HTTP",
	}); err != nil {
		return err
	}
	if err := doc.AddResource("aws_apigatewayv2_integration", resIntegration, map[string]any{
		"api_id":                 tfjson.ResourceAttr("aws_apigatewayv2_api", resAPI, "id"),
		"integration_type":       "AWS_PROXY",
		"integration_method":     "POST",
		"integration_uri":        tfjson.ResourceAttr("aws_lambda_function", resFunction, "invoke_arn"),
		"payload_format_version": "2.0",
	}); err != nil {
		return err
	}
	if err := doc.AddResource("aws_apigatewayv2_route", resRoute, map[string]any{
		"api_id":    tfjson.ResourceAttr("aws_apigatewayv2_api", resAPI, "id"),
		"route_key": "$default",
		"target":    "integrations/" + tfjson.ResourceAttr("aws_apigatewayv2_integration", resIntegration, "id"),
	}); err != nil {
		return err
	}
	if err := doc.AddResource("aws_apigatewayv2_stage", resStage, map[string]any{
		"api_id":      tfjson.ResourceAttr("aws_apigatewayv2_api", resAPI, "id"),
		"name":        "$default",
		"auto_deploy": true,
	}); err != nil {
		return err
	}
	return doc.AddOutput(OutputAPIURL, tfjson.Output{
		Value:       tfjson.ResourceAttr("aws_apigatewayv2_stage", resStage, "invoke_url"),
		Description: "Public endpoint of the service's HTTP API",
	})
}

func policyJSON(policy map[string]any) (string, error) {
	payload, err := json.Marshal(policy)
	if err != nil {
		return "", fmt.Errorf("encode policy: %w", err)
	}
	return string(payload), nil
}
