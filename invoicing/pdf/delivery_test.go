package pdf_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alapierre/go-simpleinvoicing-client/invoicing/blob"
	"github.com/alapierre/go-simpleinvoicing-client/invoicing/mocks"
	"github.com/alapierre/go-simpleinvoicing-client/invoicing/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type deliveryFixture struct {
	host     *mocks.MockHost
	surface  *mocks.MockSurface
	store    *blob.Store
	delivery *pdf.Delivery
}

func newDeliveryFixture(t *testing.T) *deliveryFixture {
	ctrl := gomock.NewController(t)
	f := &deliveryFixture{
		host:    mocks.NewMockHost(ctrl),
		surface: mocks.NewMockSurface(ctrl),
		store:   newStore(t),
	}
	f.delivery = pdf.NewDelivery(f.host, f.store, pdf.WithPrintDelay(time.Millisecond))
	return f
}

func isBlobRef() gomock.Matcher {
	return gomock.Cond(func(x any) bool {
		s, ok := x.(string)
		return ok && strings.HasPrefix(s, "http://blob.test/blob/")
	})
}

func TestDelivery_PrintURL(t *testing.T) {
	f := newDeliveryFixture(t)
	ctx := context.Background()
	const u = "https://cdn.example.com/FV-1.pdf"

	gomock.InOrder(
		f.host.EXPECT().MountHidden(ctx, u).Return(f.surface, nil),
		f.surface.EXPECT().Print(ctx).Return(nil),
		f.surface.EXPECT().Remove().Return(nil),
	)

	require.NoError(t, f.delivery.Print(ctx, pdf.URL(u)))
	f.delivery.Wait()

	c, _ := f.store.Stats()
	assert.Zero(t, c)
}

func TestDelivery_PrintBase64ReleasesAfterDelay(t *testing.T) {
	f := newDeliveryFixture(t)
	ctx := context.Background()
	payload, _ := encoded(t)

	var live int
	f.host.EXPECT().MountHidden(ctx, isBlobRef()).Return(f.surface, nil)
	f.surface.EXPECT().Print(ctx).DoAndReturn(func(context.Context) error {
		live = f.store.Live()
		return nil
	})
	f.surface.EXPECT().Remove().Return(nil)

	require.NoError(t, f.delivery.Print(ctx, pdf.Base64(pdf.DataURIPrefix+payload)))
	f.delivery.Wait()

	assert.Equal(t, 1, live, "reference is live while printing")
	requireAllReleased(t, f.store, 1)
}

func TestDelivery_PrintFailures(t *testing.T) {
	ctx := context.Background()
	payload, _ := encoded(t)
	boom := errors.New("boom")

	t.Run("mount", func(t *testing.T) {
		f := newDeliveryFixture(t)
		f.host.EXPECT().MountHidden(ctx, isBlobRef()).Return(nil, boom)

		err := f.delivery.Print(ctx, pdf.Base64(payload))

		assert.ErrorIs(t, err, boom)
		requireAllReleased(t, f.store, 1)
	})

	t.Run("print", func(t *testing.T) {
		f := newDeliveryFixture(t)
		f.host.EXPECT().MountHidden(ctx, isBlobRef()).Return(f.surface, nil)
		f.surface.EXPECT().Print(ctx).Return(boom)
		f.surface.EXPECT().Remove().Return(nil)

		err := f.delivery.Print(ctx, pdf.Base64(payload))
		f.delivery.Wait()

		assert.ErrorIs(t, err, boom)
		requireAllReleased(t, f.store, 1)
	})

	t.Run("bad payload", func(t *testing.T) {
		f := newDeliveryFixture(t)

		err := f.delivery.Print(ctx, pdf.Base64("%%%"))

		assert.ErrorIs(t, err, pdf.ErrInvalidBase64)
		requireAllReleased(t, f.store, 0)
	})

	t.Run("zero source", func(t *testing.T) {
		f := newDeliveryFixture(t)

		assert.ErrorIs(t, f.delivery.Print(ctx, pdf.Source{}), pdf.ErrInvalidSource)
	})
}

func TestDelivery_ConcurrentPrintsAreIndependent(t *testing.T) {
	f := newDeliveryFixture(t)
	ctx := context.Background()
	payload, _ := encoded(t)

	const n = 5
	f.host.EXPECT().MountHidden(ctx, isBlobRef()).Return(f.surface, nil).Times(n)
	f.surface.EXPECT().Print(ctx).Return(nil).Times(n)
	f.surface.EXPECT().Remove().Return(nil).Times(n)

	errs := make(chan error, n)
	for range n {
		go func() { errs <- f.delivery.Print(ctx, pdf.Base64(payload)) }()
	}
	for range n {
		require.NoError(t, <-errs)
	}
	f.delivery.Wait()

	requireAllReleased(t, f.store, n)
}

func TestDelivery_Download(t *testing.T) {
	ctx := context.Background()
	payload, _ := encoded(t)

	t.Run("default name", func(t *testing.T) {
		f := newDeliveryFixture(t)
		f.host.EXPECT().Save(ctx, isBlobRef(), pdf.DefaultFileName).Return(nil)

		require.NoError(t, f.delivery.Download(ctx, pdf.Base64(payload), ""))
		requireAllReleased(t, f.store, 1)
	})

	t.Run("url", func(t *testing.T) {
		f := newDeliveryFixture(t)
		f.host.EXPECT().Save(ctx, "https://cdn.example.com/a.pdf", "FV-1.pdf").Return(nil)

		require.NoError(t, f.delivery.Download(ctx, pdf.URL("https://cdn.example.com/a.pdf"), "FV-1.pdf"))
		requireAllReleased(t, f.store, 0)
	})

	t.Run("host error", func(t *testing.T) {
		f := newDeliveryFixture(t)
		boom := errors.New("denied")
		f.host.EXPECT().Save(ctx, isBlobRef(), "x.pdf").Return(boom)

		assert.ErrorIs(t, f.delivery.Download(ctx, pdf.Base64(payload), "x.pdf"), boom)
		requireAllReleased(t, f.store, 1)
	})
}

func TestDelivery_Render(t *testing.T) {
	ctx := context.Background()
	payload, _ := encoded(t)

	t.Run("base64", func(t *testing.T) {
		f := newDeliveryFixture(t)
		f.host.EXPECT().MountInto(ctx, "invoice", isBlobRef()).DoAndReturn(func(context.Context, string, string) error {
			assert.Equal(t, 1, f.store.Live())
			return nil
		})

		require.NoError(t, f.delivery.Render(ctx, pdf.Base64(pdf.DataURIPrefix+payload), "invoice"))
		requireAllReleased(t, f.store, 1)
	})

	t.Run("container not found", func(t *testing.T) {
		f := newDeliveryFixture(t)
		f.host.EXPECT().MountInto(ctx, "missing", isBlobRef()).Return(pdf.ErrContainerNotFound)

		err := f.delivery.Render(ctx, pdf.Base64(payload), "missing")

		assert.ErrorIs(t, err, pdf.ErrContainerNotFound)
		assert.Contains(t, err.Error(), `"missing"`)
		requireAllReleased(t, f.store, 1)
	})

	t.Run("url", func(t *testing.T) {
		f := newDeliveryFixture(t)
		f.host.EXPECT().MountInto(ctx, "invoice", "https://cdn.example.com/a.pdf").Return(nil)

		require.NoError(t, f.delivery.Render(ctx, pdf.URL("https://cdn.example.com/a.pdf"), "invoice"))
	})
}

func TestDelivery_ReleaseFailureIsLogged(t *testing.T) {
	ctrl := gomock.NewController(t)
	host := mocks.NewMockHost(ctrl)
	refs := mocks.NewMockReferences(ctrl)
	d := pdf.NewDelivery(host, refs)
	ctx := context.Background()

	gomock.InOrder(
		refs.EXPECT().Create(gomock.Any(), pdf.ContentType).Return("http://blob.test/blob/1", nil),
		host.EXPECT().Save(ctx, "http://blob.test/blob/1", "a.pdf").Return(nil),
		refs.EXPECT().Revoke("http://blob.test/blob/1").Return(errors.New("gone")).Times(1),
	)

	assert.NoError(t, d.Download(ctx, pdf.Base64("JVBERi0="), "a.pdf"))
}
