package sbremote

import (
	"context"
	"errors"
	"log"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/ssm"
	"github.com/aws/aws-sdk-go/service/ssm/ssmiface"
	"github.com/function61/gokit/logex"
	"github.com/function61/ssmbackup/pkg/sbaws"
	"github.com/function61/ssmbackup/pkg/sbconfig"
	"github.com/function61/ssmbackup/pkg/sbtypes"
)

type ssmDispatcher struct {
	ssm  ssmiface.SSMAPI
	conf sbconfig.CommandConfig
	logl *logex.Leveled
}

func NewSSMDispatcher(conf sbconfig.CommandConfig, logger *log.Logger) (Dispatcher, error) {
	sess, err := sbaws.Session(conf.Region)
	if err != nil {
		return nil, err
	}

	return newSSMDispatcher(ssm.New(sess), conf, logger), nil
}

func newSSMDispatcher(client ssmiface.SSMAPI, conf sbconfig.CommandConfig, logger *log.Logger) *ssmDispatcher {
	return &ssmDispatcher{
		ssm:  client,
		conf: conf,
		logl: logex.Levels(logger),
	}
}

func (s *ssmDispatcher) Send(ctx context.Context, instanceId string, command string) (string, error) {
	input := &ssm.SendCommandInput{
		InstanceIds:  aws.StringSlice([]string{instanceId}),
		DocumentName: aws.String(s.conf.DocumentName),
		Parameters: map[string][]*string{
			"commands": aws.StringSlice([]string{command}),
		},
	}

	if s.conf.CloudWatchLogGroup != "" {
		input.CloudWatchOutputConfig = &ssm.CloudWatchOutputConfig{
			CloudWatchLogGroupName:  aws.String(s.conf.CloudWatchLogGroup),
			CloudWatchOutputEnabled: aws.Bool(true),
		}
	}

	res, err := s.ssm.SendCommandWithContext(ctx, input)
	if err != nil {
		return "", err
	}

	if res.Command == nil || aws.StringValue(res.Command.CommandId) == "" {
		return "", errors.New("SendCommand: response did not contain command ID")
	}

	commandId := aws.StringValue(res.Command.CommandId)

	s.logl.Debug.Printf("sent command %s to %s", commandId, instanceId)

	return commandId, nil
}

func (s *ssmDispatcher) Invocation(ctx context.Context, commandId string, instanceId string) (*sbtypes.Invocation, error) {
	res, err := s.ssm.GetCommandInvocationWithContext(ctx, &ssm.GetCommandInvocationInput{
		CommandId:  aws.String(commandId),
		InstanceId: aws.String(instanceId),
	})
	if err != nil {
		if awsErr, ok := err.(awserr.Error); ok && awsErr.Code() == ssm.ErrCodeInvocationDoesNotExist {
			return nil, ErrInvocationNotFound
		}

		return nil, err
	}

	return &sbtypes.Invocation{
		CommandId:     aws.StringValue(res.CommandId),
		InstanceId:    aws.StringValue(res.InstanceId),
		Status:        sbtypes.InvocationStatus(aws.StringValue(res.Status)),
		StatusDetails: aws.StringValue(res.StatusDetails),
		Stdout:        aws.StringValue(res.StandardOutputContent),
		Stderr:        aws.StringValue(res.StandardErrorContent),
	}, nil
}
