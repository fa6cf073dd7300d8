package cloudinary

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestQuestionPublicID(t *testing.T) {
	require.Equal(t, "question-7-binary-tree", QuestionPublicID(7, "Binary Tree.PNG"))
	require.Equal(t, "question-3", QuestionPublicID(3, "__.jpg"))
	require.Equal(t, "question-9-diagram", QuestionPublicID(9, "../../diagram.svg"))
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(Config{CloudName: "demo"}, zerolog.Nop())
	require.Error(t, err)
}
