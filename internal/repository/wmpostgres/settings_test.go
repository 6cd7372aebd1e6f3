package wmpostgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pixelmint/genmark/internal/model"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/dbpg"
)

func newSettingsRepoWithMock(t *testing.T) (SettingsRepo, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	pg := &dbpg.DB{Master: db}

	return SettingsRepo{DB: pg}, mock
}

// LOAD - SUCCESS
func TestSettingsRepo_Load_OK(t *testing.T) {
	repo, mock := newSettingsRepoWithMock(t)

	rows := sqlmock.NewRows([]string{
		"visible_enabled", "hidden_enabled", "visible_text_template", "hidden_key",
		"visible_position", "visible_opacity", "visible_bar", "font_scale",
		"visible_font_family", "visible_font_data_url", "updated_at",
	}).AddRow(
		true, true, "{email}", "watermark",
		"bottom-left", 0.25, false, 0.05,
		"Inter", nil, time.Now(),
	)

	mock.ExpectQuery(`SELECT visible_enabled`).
		WithArgs(settingsRowID).
		WillReturnRows(rows)

	s, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, "{email}", s.VisibleTextTemplate)
	require.Equal(t, model.PosBottomLeft, s.VisiblePosition)
	require.Equal(t, 0.25, s.VisibleOpacity)
	require.False(t, s.VisibleBar)
	require.NotNil(t, s.VisibleFontFamily)
	require.Equal(t, "Inter", *s.VisibleFontFamily)
	require.Nil(t, s.VisibleFontDataURL)
}

// LOAD - EMPTY TABLE
func TestSettingsRepo_Load_NoRow(t *testing.T) {
	repo, mock := newSettingsRepoWithMock(t)

	mock.ExpectQuery(`SELECT visible_enabled`).
		WithArgs(settingsRowID).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Load(context.Background())
	require.ErrorIs(t, err, sql.ErrNoRows)
}

// SAVE - SUCCESS
func TestSettingsRepo_Save_OK(t *testing.T) {
	repo, mock := newSettingsRepoWithMock(t)

	s := model.DefaultWatermarkSettings()

	mock.ExpectQuery(`INSERT INTO watermark_settings`).
		WithArgs(settingsRowID,
			s.VisibleEnabled,
			s.HiddenEnabled,
			s.VisibleTextTemplate,
			s.HiddenKey,
			s.VisiblePosition,
			s.VisibleOpacity,
			s.VisibleBar,
			s.FontScale,
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
		).
		WillReturnRows(sqlmock.NewRows([]string{}))

	err := repo.Save(context.Background(), &s)
	require.NoError(t, err)
}
