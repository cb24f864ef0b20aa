package email_processor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeriveCandidateName(t *testing.T) {
	require.Equal(t, "juan perez", DeriveCandidateName("", "juan.perez@x.com"))
	require.Equal(t, "maria del mar", DeriveCandidateName("", "maria_del.mar@x.com"))
	require.Equal(t, "Ana Pérez", DeriveCandidateName("Ana  Pérez", "ana@x.com"))
	require.Equal(t, "Ana Pérez", DeriveCandidateName(`"Ana Pérez"`, "ana@x.com"))
	require.Equal(t, "juan perez", DeriveCandidateName("juan.perez@x.com", "juan.perez@x.com"))
	require.Equal(t, "", DeriveCandidateName("", ""))
}
