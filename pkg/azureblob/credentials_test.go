package azureblob

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelstream/preflight/pkg/preflight"
)

// Azurite's published development storage key, valid base64 for shared-key
// credential construction. Not a secret.
const azuriteKey = "Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw=="

func mapLookup(env map[string]string) preflight.LookupFunc {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func emptyLookup(string) (string, bool) { return "", false }

func TestResolveFillsUnsetFieldsFromEnvironment(t *testing.T) {
	env := map[string]string{
		EnvConnectionString: "conn-from-env",
		EnvAccountName:      "acct-from-env",
		EnvSASToken:         "sas-from-env",
		EnvAccountKey:       "key-from-env",
		EnvEndpoint:         "endpoint-from-env",
	}

	creds := Resolve(&Credentials{}, mapLookup(env))
	assert.Equal(t, "conn-from-env", creds.ConnectionString)
	assert.Equal(t, "acct-from-env", creds.AccountName)
	assert.Equal(t, "sas-from-env", creds.SASToken)
	assert.Equal(t, "key-from-env", creds.AccountKey)
	assert.Equal(t, "endpoint-from-env", creds.Endpoint)
}

func TestResolveNeverOverwritesCallerValues(t *testing.T) {
	env := map[string]string{
		EnvConnectionString: "conn-from-env",
		EnvAccountName:      "acct-from-env",
		EnvSASToken:         "sas-from-env",
		EnvAccountKey:       "key-from-env",
		EnvEndpoint:         "endpoint-from-env",
	}

	creds := &Credentials{
		ConnectionString: "conn-explicit",
		AccountName:      "acct-explicit",
		SASToken:         "sas-explicit",
		AccountKey:       "key-explicit",
		Endpoint:         "endpoint-explicit",
	}
	resolved := Resolve(creds, mapLookup(env))

	assert.Same(t, creds, resolved)
	assert.Equal(t, "conn-explicit", resolved.ConnectionString)
	assert.Equal(t, "acct-explicit", resolved.AccountName)
	assert.Equal(t, "sas-explicit", resolved.SASToken)
	assert.Equal(t, "key-explicit", resolved.AccountKey)
	assert.Equal(t, "endpoint-explicit", resolved.Endpoint)
}

func TestResolveNilBundle(t *testing.T) {
	creds := Resolve(nil, mapLookup(map[string]string{EnvAccountName: "acct"}))
	assert.Equal(t, "acct", creds.AccountName)
	assert.Equal(t, "", creds.ConnectionString)
}

func TestResolveLeavesUnsetFieldsUnset(t *testing.T) {
	creds := Resolve(&Credentials{AccountName: "acct"}, emptyLookup)
	assert.Equal(t, "acct", creds.AccountName)
	assert.Equal(t, "", creds.SASToken)
	assert.Equal(t, "", creds.Endpoint)
}

func TestStrategyPrecedence(t *testing.T) {
	tests := []struct {
		name  string
		creds Credentials
		want  Strategy
	}{
		{
			// Connection string wins over everything else
			name: "connection string first",
			creds: Credentials{
				ConnectionString: "conn",
				AccountName:      "acct",
				SASToken:         "sas",
				AccountKey:       azuriteKey,
				Endpoint:         "http://127.0.0.1:10000/acct",
			},
			want: StrategyConnectionString,
		},
		{
			name:  "account plus sas",
			creds: Credentials{AccountName: "acct", SASToken: "sv=2020"},
			want:  StrategySASToken,
		},
		{
			name:  "account alone uses default chain",
			creds: Credentials{AccountName: "acct"},
			want:  StrategyDefaultChain,
		},
		{
			// The account key is ignored against a TLS endpoint
			name:  "https endpoint ignores account key",
			creds: Credentials{AccountName: "acct", AccountKey: azuriteKey},
			want:  StrategyDefaultChain,
		},
		{
			name: "https override endpoint ignores account key",
			creds: Credentials{
				AccountName: "acct",
				AccountKey:  azuriteKey,
				Endpoint:    "https://acct.custom.example.com",
			},
			want: StrategyDefaultChain,
		},
		{
			name: "non-TLS endpoint with key uses shared key",
			creds: Credentials{
				AccountName: "acct",
				AccountKey:  azuriteKey,
				Endpoint:    "http://127.0.0.1:10000/acct",
			},
			want: StrategySharedKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creds := tt.creds
			got, err := ResolveStrategy(&creds, emptyLookup)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStrategyNoCredentials(t *testing.T) {
	_, err := ResolveStrategy(&Credentials{}, emptyLookup)
	require.Error(t, err)

	// The configuration error enumerates every accepted combination
	msg := err.Error()
	assert.Contains(t, msg, "connection string")
	assert.Contains(t, msg, "SAS token")
	assert.Contains(t, msg, "default Azure credential chain")
	assert.Contains(t, msg, "account key")
}

func TestStrategyFromEnvironmentOnly(t *testing.T) {
	env := map[string]string{
		EnvAccountName: "acct",
		EnvSASToken:    "sv=2020",
	}
	got, err := ResolveStrategy(nil, mapLookup(env))
	require.NoError(t, err)
	assert.Equal(t, StrategySASToken, got)
}

func TestNewServiceClientFromConnectionString(t *testing.T) {
	creds := &Credentials{
		ConnectionString: "DefaultEndpointsProtocol=https;AccountName=testacct;AccountKey=" +
			azuriteKey + ";EndpointSuffix=core.windows.net",
		// Lower-priority fields must be ignored
		AccountName: "otheracct",
		SASToken:    "sv=2020",
	}
	client, err := NewServiceClient(creds, emptyLookup, nil)
	require.NoError(t, err)
	assert.Contains(t, client.URL(), "testacct.blob.core.windows.net")
}

func TestNewServiceClientFromSASToken(t *testing.T) {
	client, err := NewServiceClient(&Credentials{
		AccountName: "acct",
		SASToken:    "sv=2020",
	}, emptyLookup, nil)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(client.URL(), "https://acct.blob.core.windows.net"))
	assert.Contains(t, client.URL(), "?sv=2020")
}

func TestNewServiceClientSASEndpointOverride(t *testing.T) {
	client, err := NewServiceClient(&Credentials{
		AccountName: "acct",
		SASToken:    "?sv=2020",
		Endpoint:    "https://acct.custom.example.com",
	}, emptyLookup, nil)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(client.URL(), "https://acct.custom.example.com"))
	assert.Contains(t, client.URL(), "?sv=2020")
	// Normalization must not double the separator
	assert.NotContains(t, client.URL(), "??")
}

func TestNewServiceClientEmulatorSharedKey(t *testing.T) {
	client, err := NewServiceClient(&Credentials{
		AccountName: "devstoreaccount1",
		AccountKey:  azuriteKey,
		Endpoint:    "http://127.0.0.1:10000/devstoreaccount1",
	}, emptyLookup, nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(client.URL(), "http://127.0.0.1:10000"))
}

func TestNewServiceClientNoCredentials(t *testing.T) {
	_, err := NewServiceClient(&Credentials{}, emptyLookup, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no valid Azure credentials")
}

func TestNormalizeSAS(t *testing.T) {
	assert.Equal(t, "?sv=2020", NormalizeSAS("sv=2020"))
	assert.Equal(t, "?sv=2020", NormalizeSAS("?sv=2020"))

	// Idempotent under repeated normalization
	assert.Equal(t, "?sv=2020", NormalizeSAS(NormalizeSAS("sv=2020")))
}

func TestServiceURL(t *testing.T) {
	assert.Equal(t, "https://acct.blob.core.windows.net", ServiceURL(&Credentials{AccountName: "acct"}))
	assert.Equal(t, "http://localhost:10000/acct", ServiceURL(&Credentials{
		AccountName: "acct",
		Endpoint:    "http://localhost:10000/acct",
	}))
}
