// Credential resolution for Azure Blob Storage. Implements the precedence
// chain that turns a partially-specified credential bundle into a ready
// service client for the tensor streamer.
package azureblob

import (
	"fmt"
	"os"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/pkg/errors"

	"github.com/modelstream/preflight/pkg/preflight"
)

// Environment variables consumed by Resolve. These names are stable and match
// what the Azure tooling ecosystem expects.
const (
	EnvConnectionString = "AZURE_STORAGE_CONNECTION_STRING"
	EnvAccountName      = "AZURE_STORAGE_ACCOUNT_NAME"
	EnvSASToken         = "AZURE_STORAGE_SAS_TOKEN"
	EnvAccountKey       = "AZURE_STORAGE_ACCOUNT_KEY"
	EnvEndpoint         = "AZURE_STORAGE_ENDPOINT"
)

const defaultEndpointSuffix = "blob.core.windows.net"

// Credentials is the bundle of optional authentication fields for Azure Blob
// Storage. Fields are complementary, not merged: client construction examines
// them in a fixed precedence order and uses exactly one strategy.
//
// Credentials can be provided in the following ways (in order of precedence):
//  1. Connection string
//  2. Account name with SAS token
//  3. Account name alone (default Azure credential chain: environment
//     service principal, Azure CLI login, managed identity)
//  4. Account name with account key against a non-TLS (emulator) endpoint
//
// Unset fields are filled from the AZURE_STORAGE_* environment variables by
// Resolve before the precedence is evaluated.
type Credentials struct {
	ConnectionString string
	AccountName      string
	SASToken         string
	// AccountKey is only honored against a non-TLS endpoint (strategy 4).
	// The default credential chain refuses http:// endpoints, so key auth is
	// the only way to talk to a local emulator such as Azurite.
	AccountKey string
	// Endpoint overrides the default https://{account}.blob.core.windows.net
	// service URL.
	Endpoint string
}

// Strategy identifies which authentication strategy the precedence chain
// selected for a resolved bundle.
type Strategy int

const (
	StrategyNone Strategy = iota
	StrategyConnectionString
	StrategySASToken
	StrategyDefaultChain
	StrategySharedKey
)

func (s Strategy) String() string {
	switch s {
	case StrategyConnectionString:
		return "connection-string"
	case StrategySASToken:
		return "account-name + sas-token"
	case StrategyDefaultChain:
		return "account-name + default credential chain"
	case StrategySharedKey:
		return "account-name + account-key (emulator)"
	}
	return "none"
}

// errNoCredentials enumerates every accepted input combination so a caller
// can self-correct from the message alone.
var errNoCredentials = errors.New(
	"no valid Azure credentials found, provide one of:\n" +
		"  - a connection string (AZURE_STORAGE_CONNECTION_STRING)\n" +
		"  - an account name and SAS token (AZURE_STORAGE_ACCOUNT_NAME + AZURE_STORAGE_SAS_TOKEN)\n" +
		"  - an account name alone to use the default Azure credential chain (AZURE_STORAGE_ACCOUNT_NAME)\n" +
		"  - an account name and account key against a non-TLS emulator endpoint (AZURE_STORAGE_ACCOUNT_NAME + AZURE_STORAGE_ACCOUNT_KEY + AZURE_STORAGE_ENDPOINT)")

// Resolve fills unset fields of creds from the AZURE_STORAGE_* environment.
// Fields already set by the caller are never overwritten. A nil creds starts
// from an empty bundle and a nil lookup reads the real process environment.
// No validation happens here; missing required combinations are detected at
// client construction.
func Resolve(creds *Credentials, lookup preflight.LookupFunc) *Credentials {
	if creds == nil {
		creds = &Credentials{}
	}
	if lookup == nil {
		lookup = os.LookupEnv
	}

	fill := func(field *string, key string) {
		if *field == "" {
			if v, ok := lookup(key); ok {
				*field = v
			}
		}
	}
	fill(&creds.ConnectionString, EnvConnectionString)
	fill(&creds.AccountName, EnvAccountName)
	fill(&creds.SASToken, EnvSASToken)
	fill(&creds.AccountKey, EnvAccountKey)
	fill(&creds.Endpoint, EnvEndpoint)

	return creds
}

// ResolveStrategy reports which authentication strategy NewServiceClient
// would use for the given bundle, without constructing a client. The returned
// error is the same configuration error NewServiceClient raises when no
// combination matches.
func ResolveStrategy(creds *Credentials, lookup preflight.LookupFunc) (Strategy, error) {
	creds = Resolve(creds, lookup)

	switch {
	case creds.ConnectionString != "":
		return StrategyConnectionString, nil
	case creds.AccountName != "" && creds.SASToken != "":
		return StrategySASToken, nil
	case creds.AccountName != "":
		if insecureEndpoint(creds.Endpoint) && creds.AccountKey != "" {
			return StrategySharedKey, nil
		}
		return StrategyDefaultChain, nil
	}
	return StrategyNone, errNoCredentials
}

// NewServiceClient resolves creds against the environment and builds an Azure
// Blob service client using the first matching strategy. Construction makes
// no network calls; authentication happens lazily on first use, and any
// failure there is the SDK's error, surfaced unchanged.
func NewServiceClient(creds *Credentials, lookup preflight.LookupFunc, opts *Options) (*azblob.Client, error) {
	creds = Resolve(creds, lookup)
	clientOpts := opts.clientOptions()

	// Priority 1: connection string
	if creds.ConnectionString != "" {
		client, err := azblob.NewClientFromConnectionString(creds.ConnectionString, clientOpts)
		return client, errors.Wrap(err, "building client from connection string")
	}

	// Priority 2: account name + SAS token
	if creds.AccountName != "" && creds.SASToken != "" {
		url := ServiceURL(creds) + NormalizeSAS(creds.SASToken)
		client, err := azblob.NewClientWithNoCredential(url, clientOpts)
		return client, errors.Wrap(err, "building client from SAS token")
	}

	if creds.AccountName != "" {
		url := ServiceURL(creds)

		// Emulator variant: the default credential chain refuses non-TLS
		// endpoints, so fall back to shared-key auth when a key is available.
		if insecureEndpoint(creds.Endpoint) && creds.AccountKey != "" {
			shared, err := azblob.NewSharedKeyCredential(creds.AccountName, creds.AccountKey)
			if err != nil {
				return nil, errors.Wrap(err, "building shared key credential")
			}
			client, err := azblob.NewClientWithSharedKeyCredential(url, shared, clientOpts)
			return client, errors.Wrap(err, "building client from shared key")
		}

		// Priority 3: default Azure credential chain
		chain, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, errors.Wrap(err, "building default Azure credential chain")
		}
		client, err := azblob.NewClient(url, chain, clientOpts)
		return client, errors.Wrap(err, "building client from default credential chain")
	}

	return nil, errNoCredentials
}

// ServiceURL returns the blob service URL for the bundle: the explicit
// endpoint override when set, else the account's default endpoint.
func ServiceURL(creds *Credentials) string {
	if creds.Endpoint != "" {
		return creds.Endpoint
	}
	return fmt.Sprintf("https://%s.%s", creds.AccountName, defaultEndpointSuffix)
}

// NormalizeSAS guarantees the token begins with exactly one query separator.
// Idempotent: an already-normalized token passes through unchanged.
func NormalizeSAS(token string) string {
	if strings.HasPrefix(token, "?") {
		return token
	}
	return "?" + token
}

func insecureEndpoint(endpoint string) bool {
	return strings.HasPrefix(endpoint, "http://")
}
