package services

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/pratik-mahalle/ec2pull/internal/domain/inventory"
	"github.com/pratik-mahalle/ec2pull/internal/pkg/errors"
	"github.com/pratik-mahalle/ec2pull/internal/pkg/logger"
	"github.com/pratik-mahalle/ec2pull/internal/pkg/metrics"
	"github.com/pratik-mahalle/ec2pull/internal/providers"
)

const (
	opListInstances = "ListRunningInstances"
	opGetInstance   = "GetInstance"

	skipNoPrivateDNS = "no_private_dns_name"
)

// InstanceClient is the EC2 access the inventory needs
type InstanceClient interface {
	ListRunningInstances(ctx context.Context, instanceIDs ...string) ([]types.Instance, error)
	GetInstance(ctx context.Context, instanceID string) (*types.Instance, error)
}

// InventoryService implements inventory.Service
type InventoryService struct {
	client     InstanceClient
	normalizer *providers.Normalizer
	recorder   *metrics.Recorder
	logger     *logger.Logger
}

// NewInventoryService creates a new inventory service
func NewInventoryService(client InstanceClient, log *logger.Logger, recorder *metrics.Recorder, opts providers.NormalizerOptions) inventory.Service {
	return &InventoryService{
		client:     client,
		normalizer: providers.NewNormalizer(opts),
		recorder:   recorder,
		logger:     log,
	}
}

// List builds the inventory of running instances. Instances without a
// private DNS name have no host key and are left out with a warning
func (s *InventoryService) List(ctx context.Context, instanceID string) (*inventory.Inventory, error) {
	var scope []string
	if instanceID != "" {
		scope = []string{instanceID}
	}

	instances, err := s.listRunning(ctx, scope...)
	if err != nil {
		return nil, err
	}

	inv := inventory.New()
	for _, inst := range instances {
		dnsName := aws.ToString(inst.PrivateDnsName)
		log := s.logger.With("instance_id", aws.ToString(inst.InstanceId))
		if dnsName == "" {
			log.Warn("Skipping instance without a private DNS name")
			s.recorder.RecordSkippedInstance(skipNoPrivateDNS)
			continue
		}

		inv.RecordHost(dnsName, s.normalize(log, inst))
		groups := inventory.GroupByTags(inv, dnsName, providers.Tags(inst.Tags))
		log.WithFields(map[string]interface{}{
			"private_dns_name": dnsName,
			"groups":           len(groups),
		}).Debug("Host added to inventory")
	}

	s.recorder.SetInventorySize(len(inv.Hosts()), len(inv.Groups()))
	s.logger.WithFields(map[string]interface{}{
		"hosts":  len(inv.Hosts()),
		"groups": len(inv.Groups()),
		"scoped": instanceID != "",
	}).Info("Inventory built")

	return inv, nil
}

// Host returns the variables of the running instance named dnsName
func (s *InventoryService) Host(ctx context.Context, dnsName string) (*inventory.HostMetadata, error) {
	instanceID, err := s.resolveDNSName(ctx, dnsName)
	if err != nil {
		return nil, err
	}

	log := s.logger.WithFields(map[string]interface{}{
		"instance_id":      instanceID,
		"private_dns_name": dnsName,
	})

	start := time.Now()
	inst, err := s.client.GetInstance(ctx, instanceID)
	s.recorder.RecordAPICall(opGetInstance, err, time.Since(start))
	if err != nil {
		log.WithError(err).Debug("Instance fetch failed")
		return nil, err
	}

	md := s.normalize(log, *inst)
	s.recorder.SetInventorySize(1, 0)
	return md, nil
}

// resolveDNSName scans running instances once for a private DNS name
func (s *InventoryService) resolveDNSName(ctx context.Context, dnsName string) (string, error) {
	instances, err := s.listRunning(ctx)
	if err != nil {
		return "", err
	}

	nameToID := make(map[string]string, len(instances))
	for _, inst := range instances {
		nameToID[aws.ToString(inst.PrivateDnsName)] = aws.ToString(inst.InstanceId)
	}

	id, ok := nameToID[dnsName]
	if !ok || dnsName == "" {
		s.logger.WithFields(map[string]interface{}{
			"private_dns_name":  dnsName,
			"running_instances": len(instances),
		}).Debug("Private DNS name not among running instances")
		return "", errors.NotFound("running instance for private_dns_name " + dnsName)
	}
	return id, nil
}

func (s *InventoryService) listRunning(ctx context.Context, instanceIDs ...string) ([]types.Instance, error) {
	start := time.Now()
	instances, err := s.client.ListRunningInstances(ctx, instanceIDs...)
	s.recorder.RecordAPICall(opListInstances, err, time.Since(start))
	return instances, err
}

func (s *InventoryService) normalize(log *logger.Logger, inst types.Instance) *inventory.HostMetadata {
	md, defaulted := s.normalizer.Normalize(inst)
	for _, field := range defaulted {
		s.recorder.RecordDefaultedField(field)
	}
	if len(defaulted) > 0 {
		log.With("fields", defaulted).Debug("Instance fields absent, defaulted to empty string")
	}
	return md
}
