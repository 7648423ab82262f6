package main

import (
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func storeTestCmd(t *testing.T) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("dir", t.TempDir(), "")
	addStoreFlags(cmd)
	return cmd
}

func TestBuildStore_InvalidMaskPattern(t *testing.T) {
	cmd := storeTestCmd(t)
	if err := cmd.Flags().Set("store", "memory"); err != nil {
		t.Fatal(err)
	}
	if err := cmd.Flags().Set("mask", "["); err != nil {
		t.Fatal(err)
	}

	_, _, err := buildStore(cmd)
	if err == nil {
		t.Fatal("buildStore() should reject an unparseable mask pattern")
	}
	if !strings.Contains(err.Error(), "invalid mask pattern") {
		t.Errorf("error = %v, want an invalid mask pattern error", err)
	}
}

func TestBuildStore_InvalidEncryptionKey(t *testing.T) {
	cmd := storeTestCmd(t)
	if err := cmd.Flags().Set("store", "memory"); err != nil {
		t.Fatal(err)
	}
	if err := cmd.Flags().Set("encryption-key", "deadbeef"); err != nil {
		t.Fatal(err)
	}

	if _, _, err := buildStore(cmd); err == nil {
		t.Fatal("buildStore() should reject a key that is not 32 bytes")
	}
}

func TestBuildStore_ValidMaskPattern(t *testing.T) {
	cmd := storeTestCmd(t)
	if err := cmd.Flags().Set("store", "memory"); err != nil {
		t.Fatal(err)
	}
	if err := cmd.Flags().Set("mask", "password|token"); err != nil {
		t.Fatal(err)
	}

	store, cleanup, err := buildStore(cmd)
	if err != nil {
		t.Fatalf("buildStore() error = %v", err)
	}
	defer cleanup()
	if store == nil {
		t.Fatal("buildStore() returned a nil store")
	}
}

func TestBuildStore_UnknownBackend(t *testing.T) {
	cmd := storeTestCmd(t)
	if err := cmd.Flags().Set("store", "s3"); err != nil {
		t.Fatal(err)
	}

	if _, _, err := buildStore(cmd); err == nil {
		t.Fatal("buildStore() should reject unknown backends")
	}
}
