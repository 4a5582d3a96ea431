package evmchain

import "testing"

func TestBridgeABIExposesExpectedMethodsAndEvents(t *testing.T) {
	for _, name := range []string{"newBridgeRequest", "mintToken", "tokenAddress"} {
		if _, ok := bridgeABI.Methods[name]; !ok {
			t.Errorf("bridgeABI missing method %q", name)
		}
	}
	for _, name := range []string{"NewRequest", "TokenMinted"} {
		if _, ok := bridgeABI.Events[name]; !ok {
			t.Errorf("bridgeABI missing event %q", name)
		}
	}
}

func TestTokenABIExposesOwnerAndURI(t *testing.T) {
	for _, name := range []string{"ownerOf", "tokenURI"} {
		if _, ok := tokenABI.Methods[name]; !ok {
			t.Errorf("tokenABI missing method %q", name)
		}
	}
}
