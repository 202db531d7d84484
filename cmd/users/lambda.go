package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"
)

func newLambdaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lambda",
		Short: "Start the AWS Lambda runtime",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLambda(cmd.Context())
		},
	}
}

// runLambda serves API Gateway HTTP API events until the runtime stops
// the process.
func runLambda(ctx context.Context) error {
	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}

	a.log.Info().
		Str("driver", a.cfg.Storage.Driver).
		Str("table", a.cfg.TableName).
		Msg("starting lambda handler")

	lambda.StartWithOptions(a.handlers.API.Handle, lambda.WithContext(ctx))
	return nil
}
