package inventory

import "context"

// Service defines the interface for inventory business logic
type Service interface {
	// List builds the inventory of running instances. A non-empty
	// instanceID limits it to that one instance. Instances without a
	// private DNS name are not part of the result
	List(ctx context.Context, instanceID string) (*Inventory, error)

	// Host returns the variables of the running instance whose private
	// DNS name is dnsName
	Host(ctx context.Context, dnsName string) (*HostMetadata, error)
}
