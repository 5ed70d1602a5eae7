package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveImageRewritesHostedShapes(t *testing.T) {
	t.Parallel()

	const want = "https://drive.google.com/thumbnail?id=ABC123&sz=w1200"
	inputs := []string{
		"https://drive.google.com/file/d/ABC123/view?usp=sharing",
		"https://drive.google.com/open?id=ABC123",
		"https://drive.google.com/thumbnail?id=ABC123&sz=w200",
		"https://drive.google.com/uc?export=view&id=ABC123",
		"  https://drive.google.com/file/d/ABC123/view  ",
	}
	for _, in := range inputs {
		require.Equal(t, want, ResolveImage(in), in)
	}
}

func TestResolveImagePassthrough(t *testing.T) {
	t.Parallel()

	require.Equal(t, "", ResolveImage(""))
	require.Equal(t, "", ResolveImage("   "))
	require.Equal(t, "https://cdn.example.com/a.png", ResolveImage(" https://cdn.example.com/a.png "))
}
